package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk/config"
	"github.com/orderdesk/orderdesk/internal/adminapi"
	"github.com/orderdesk/orderdesk/internal/app"
	"github.com/orderdesk/orderdesk/internal/assets"
	"github.com/orderdesk/orderdesk/internal/shop"
	"github.com/orderdesk/orderdesk/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	conffile = flag.String("c", "orderdesk.yml", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate the database schema, exit")
)

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)
	if err := os.MkdirAll(cfg.System.Workdir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create workdir: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	store, err := assets.NewStore(cfg.UploadDir())
	if err != nil {
		zap.S().Fatalf("asset store: %v", err)
	}

	repo := shop.NewRepository(application.DB())
	lifecycle := shop.NewLifecycle(repo, application.Bus())

	server := webserver.NewServer(application, repo, lifecycle, store)
	adminapi.Register(server.Root(), application, repo, lifecycle, store)

	if err := server.Start(); err != nil {
		zap.S().Fatalf("web server stopped: %v", err)
	}
}
