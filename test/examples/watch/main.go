package main

import (
	"os"

	"github.com/gorilla/websocket"
	"github.com/pingcap/errors"
	"github.com/urfave/cli/v2"

	"github.com/lonng/defex"
	"github.com/lonng/defex/internal/log"
	"github.com/lonng/defex/monitor"
	"github.com/lonng/defex/serialize"
)

func main() {
	app := cli.NewApp()

	app.Name = "watch"
	app.Version = defex.VERSION
	app.Copyright = "defex authors reserved"
	app.Usage = "dump the monitor frames of a running defex application"

	// flags
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Value: "ws://127.0.0.1:23456/monitor",
			Usage: "monitor endpoint address",
		},
		&cli.Int64Flag{
			Name:  "count",
			Value: 0,
			Usage: "exit after dumping this many frames, 0 means run forever",
		},
	}

	app.Action = watch

	if err := app.Run(os.Args); err != nil {
		log.Fatal("Startup watch error.", err)
	}
}

func watch(ctx *cli.Context) error {
	addr := ctx.String("addr")
	if addr == "" {
		return errors.Errorf("monitor address cannot empty")
	}
	count := ctx.Int64("count")

	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info("Watching monitor frames of %v", addr)

	var got int64
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		frame := &monitor.Frame{}
		if err := serialize.Unmarshal(data, frame); err != nil {
			return err
		}
		dump(frame)

		if got++; count > 0 && got >= count {
			return nil
		}
	}
}

// dump 打印一帧快照
func dump(frame *monitor.Frame) {
	log.Info("Frame seq=%v now=%vms watchers=%v", frame.Seq, frame.Now, frame.Watchers)
	for _, tb := range frame.Tables {
		log.Info("  table [%v] active %v/%v", tb.Name, tb.Active, tb.Cap)
		for _, slot := range tb.Slots {
			log.Info("    slot %v token=%v trigger=%vms", slot.Index, slot.Token, slot.TriggerTime)
		}
	}
}
