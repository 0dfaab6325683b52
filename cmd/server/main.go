package main

import (
	"flag"
	"net/http"

	"go.uber.org/zap"

	"github.com/Ferdinando4570/content-forge-magic/internal/config"
	"github.com/Ferdinando4570/content-forge-magic/internal/db"
	"github.com/Ferdinando4570/content-forge-magic/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	srv, err := server.New(database, cfg, logger)
	if err != nil {
		logger.Fatal("build server", zap.Error(err))
	}

	logger.Info("listening", zap.String("addr", cfg.Server.Addr))
	if err := http.ListenAndServe(cfg.Server.Addr, srv); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
