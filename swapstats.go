// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"swapstats-api/internal/cli"
	"swapstats-api/internal/config"
	"swapstats-api/internal/handler"
	"swapstats-api/internal/svc"
)

var configFile = flag.String("f", "etc/swapstats.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	cli.LogConfigSummary(cfg)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(*cfg)
	handler.RegisterHandlers(server, ctx)
	httpx.SetErrorHandlerCtx(handler.ErrorHandler)

	ctx.Calc.Start()
	defer ctx.Calc.Stop()
	if err := ctx.Scheduler.Start(context.Background()); err != nil {
		panic(err)
	}
	defer ctx.Scheduler.Stop()

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
