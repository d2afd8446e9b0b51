package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"yidino-api/internal/cli"
	"yidino-api/internal/config"
	"yidino-api/internal/handler"
	"yidino-api/internal/svc"
	"yidino-api/pkg/confkit"
)

var configFile = flag.String("f", "etc/yidino.yaml", "the config file")

func main() {
	flag.Parse()

	path := confkit.Locate(*configFile)
	cfg := config.MustLoad(path)
	cli.LogConfigSummary(cfg)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(*cfg, path)
	if err := ctx.Start(context.Background()); err != nil {
		panic(err)
	}
	defer ctx.Stop()

	httpx.SetErrorHandlerCtx(handler.ErrorHandler)
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
