// Command scoreboard runs the standalone riichi score tracker server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"riichiscore/internal/app"
	"riichiscore/internal/server"
)

const version = "0.1.0"

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address, overrides the config file")
	dataFile := flag.String("data", "", "Match document path, overrides the config file")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("Riichi scoreboard server v%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg := server.DefaultConfig()
	if *configFile != "" {
		loaded, err := server.LoadConfig(*configFile)
		if err != nil {
			logger.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dataFile != "" {
		cfg.Match.DataFile = *dataFile
	}

	svc := app.NewService(nil)
	svc.SetStartingPoints(cfg.Match.StartingPoints)

	store := server.NewFileStore(cfg.Match.DataFile)
	board := server.NewBoard(svc, store, logger)
	if err := board.Restore(context.Background(), cfg.Match.StartingPoints); err != nil {
		logger.Warn("Could not restore match document, starting fresh", "error", err)
	}

	srv := server.NewServer(cfg, board, logger)
	if err := srv.ListenAndServeWithGracefulShutdown(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
