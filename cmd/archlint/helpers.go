package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"archlint/internal/config"
	"archlint/internal/engine"
	"archlint/internal/logging"
	"archlint/internal/snapshot"
)

// getRepoRoot returns the repository root directory, preferring --repo.
func getRepoRoot() (string, error) {
	if repoFlag != "" {
		return filepath.Abs(repoFlag)
	}
	return os.Getwd()
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	repoRoot, err := getRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return repoRoot
}

// loadWorkspace loads the .archlint/ workspace config, falling back to
// defaults when the file is absent or unreadable.
func loadWorkspace(repoRoot string, logger *logging.Logger) *config.Config {
	ws, err := config.LoadConfig(repoRoot)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		ws = config.DefaultConfig()
		ws.RepoRoot = repoRoot
	}
	return ws
}

// engineConfig assembles an engine config from the workspace plus shared
// flag overrides.
func engineConfig(ws *config.Config, repoRoot string) engine.Config {
	return engine.FromWorkspace(ws, repoRoot)
}

// newEngine builds a scan engine with the bundled analyzers.
func newEngine(logger *logging.Logger) *engine.Engine {
	return engine.New(logger)
}

// storeFor opens the snapshot store configured for this workspace.
func storeFor(cfg engine.Config) *snapshot.Store {
	if cfg.SnapshotDir != "" {
		return snapshot.NewStoreAt(cfg.SnapshotDir)
	}
	return snapshot.NewStore(cfg.RepoRoot)
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newLogger creates a logger with the specified output format. Human
// output keeps logs human too; JSON output switches logs to JSON so that
// stderr stays machine-parseable alongside stdout.
func newLogger(format string) *logging.Logger {
	return logging.FromSettings(format, logLevelFlag)
}
