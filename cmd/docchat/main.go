package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/csheth/docchat/internal/citations"
	"github.com/csheth/docchat/internal/config"
	"github.com/csheth/docchat/internal/flow"
	"github.com/csheth/docchat/internal/gateway"
	"github.com/csheth/docchat/internal/history"
	"github.com/csheth/docchat/internal/logging"
	"github.com/csheth/docchat/internal/state"
	"github.com/csheth/docchat/internal/tui"
)

func main() {
	backendURL := flag.String("backend", "", "override the backend base URL")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	noRestore := flag.Bool("no-restore", false, "skip restoring the previous session")
	flag.Parse()

	// A .env next to the binary is optional; missing is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("configuration error:", err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.Backend.BaseURL = *backendURL
	}

	logger, err := logging.New(logging.Config{
		File:  cfg.Log.File,
		Level: cfg.Log.Level,
	})
	if err != nil {
		fmt.Println("logging error:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gw := gateway.New(cfg.Backend.BaseURL,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}))

	store := state.NewStore()
	logger.Info("starting",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("storage", cfg.Storage.Dir))

	program := tea.NewProgram(
		tui.New(tui.Config{
			Store:          store,
			Upload:         &flow.Upload{Gateway: gw, Store: store},
			Chat:           &flow.Chat{Gateway: gw, Store: store, TypingDelay: cfg.TypingDelay()},
			Gateway:        gw,
			History:        history.NewStore(cfg.Storage.Dir),
			Navigator:      citations.NewNavigator(),
			Logger:         logger,
			RestoreHistory: cfg.Features.RestoreHistory && !*noRestore,
			HealthCheck:    cfg.Features.HealthCheck,
		}),
		programOptions(*noAltScreen)...,
	)

	if _, err := program.Run(); err != nil {
		logger.Error("program error", zap.Error(err))
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}

func programOptions(noAltScreen bool) []tea.ProgramOption {
	if noAltScreen {
		return nil
	}
	return []tea.ProgramOption{tea.WithAltScreen()}
}
