// Package main is the entry point for the terminal globe viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Faultbox/roamsphere/internal/app"
	"github.com/Faultbox/roamsphere/internal/config"
	"github.com/Faultbox/roamsphere/internal/logger"
	"github.com/Faultbox/roamsphere/internal/tui"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the viewer, so logs only go to a file.
	logFile := cfg.Logging.LogFile
	if logFile == "" {
		logFile = filepath.Join(config.ConfigDir(), "globeview.log")
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, logger.DefaultFileConfig(logFile), false); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== globeview ===", zap.String("log_file", logFile))

	if err := run(cfg); err != nil {
		logger.Error("viewer failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	a, err := app.New(cfg, logger.Log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()

	p := tea.NewProgram(tui.New(a.Sphere, a.Camera, a.Driver),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, uiErr := p.Run()

	cancel()
	if err := <-done; err != nil {
		logger.Warn("driver stopped with error", zap.Error(err))
	}
	if uiErr != nil {
		return fmt.Errorf("running viewer: %w", uiErr)
	}
	return nil
}
