package main

import (
	"net/http"
	"os"
	"time"

	"github.com/pingcap/errors"
	"github.com/urfave/cli/v2"

	"github.com/lonng/defex"
	"github.com/lonng/defex/executor"
	"github.com/lonng/defex/internal/env"
	"github.com/lonng/defex/internal/log"
	"github.com/lonng/defex/loop"
	"github.com/lonng/defex/monitor"
	"github.com/lonng/defex/test/examples/keypad/logic"
)

func main() {
	app := cli.NewApp()

	app.Name = "keypad"
	app.Version = defex.VERSION
	app.Copyright = "defex authors reserved"
	app.Usage = "simulated keypad driven by deferred execution"

	// flags
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Value: ":23456",
			Usage: "monitor server address",
		},
		&cli.IntFlag{
			Name:  "capacity",
			Value: env.DefaultCapacity,
			Usage: "slot capacity of the default table",
		},
		&cli.Int64Flag{
			Name:  "tick",
			Value: 1,
			Usage: "poll precision in milliseconds",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Value: false,
			Usage: "enable debug logging",
		},
	}

	app.Action = serve

	if err := app.Run(os.Args); err != nil {
		log.Fatal("Startup keypad error.", err)
	}
}

func serve(ctx *cli.Context) error {
	addr := ctx.String("addr")
	if addr == "" {
		return errors.Errorf("monitor server address cannot empty")
	}
	tick := ctx.Int64("tick")
	if tick <= 0 {
		return errors.Errorf("poll tick must be positive")
	}
	env.Debug = ctx.Bool("debug")

	// 按需替换默认表
	capacity := ctx.Int("capacity")
	if capacity != env.DefaultCapacity {
		defex.Replace(executor.NewTable("default", capacity, nil), nil)
	}

	// 单协程轮询两张全局表
	lp := loop.NewLoop("keypad", time.Duration(tick)*time.Millisecond, defex.Default, defex.Core)
	lp.Start()
	defer lp.Close()

	// 观测板的推送作业挂在核心表上, 每 500ms 推送一帧
	m := monitor.NewMonitor("keypad", lp, 500, defex.Core, defex.Default, defex.Core)
	m.Start()
	defer m.Close()

	// 模拟按键事件流
	kp := logic.NewKeypad(lp)
	kp.Start()
	defer kp.Stop()

	log.Info("Keypad monitor board", m.BoardID())
	log.Info("Connect ws://127.0.0.1:23456/monitor to watch the tables")
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("keypad simulator is running, connect /monitor via websocket to watch the tables\n"))
	})
	mux.Handle("/monitor", m)
	return http.ListenAndServe(addr, mux)
}
