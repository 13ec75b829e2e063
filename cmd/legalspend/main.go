// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command legalspend starts the Legal Spend Intelligence MCP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rusq/legalspend"
	"github.com/rusq/legalspend/internal/mcp"
)

var build = "dev"

// secrets defines the names of the supported secret files that we load our
// secrets from.  Inexperienced windows users might have bad experience trying
// to create .env file with the notepad as it will battle for having the
// "txt" extension.  Let it have it.
var secrets = []string{".env", ".env.txt", "secrets.txt"}

var (
	transport    = flag.String("transport", "stdio", "MCP transport: \"stdio\" or \"http\"")
	listenAddr   = flag.String("listen", "127.0.0.1:8483", "address to listen on when -transport=http")
	envFile      = flag.String("env", "", "load environment variables from this file (default: first of .env, .env.txt, secrets.txt that exists)")
	budgetsFile  = flag.String("budgets", "", "department budgets TOML file (overrides LEGALSPEND_BUDGETS_FILE)")
	verbose      = flag.Bool("v", false, "verbose (debug) logging")
	printVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()
	if *printVersion {
		fmt.Println(build)
		return
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			slog.Error("unable to load environment file", "file", *envFile, "error", err)
			os.Exit(1)
		}
	} else {
		loadSecrets(secrets)
	}

	cfg := legalspend.LoadConfig()
	if *budgetsFile != "" {
		cfg.BudgetsFile = *budgetsFile
	}

	lg := newLogger(cfg.LogLevel, *verbose)
	slog.SetDefault(lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg legalspend.Config, lg *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	opts := []legalspend.Option{
		legalspend.WithLogger(lg),
		legalspend.WithCacheTTL(cfg.CacheTTL),
		legalspend.WithLimits(cfg.MaxRequests, cfg.Window),
	}
	if cfg.BudgetsFile != "" {
		budgets, err := legalspend.LoadBudgets(cfg.BudgetsFile)
		if err != nil {
			return fmt.Errorf("budgets file: %w", err)
		}
		opts = append(opts, legalspend.WithBudgets(budgets))
	}

	manager := legalspend.New(opts...)
	manager.InitSources(ctx, cfg.Sources)
	defer manager.Cleanup()

	if active := manager.ActiveSources(); len(active) == 0 {
		lg.WarnContext(ctx, "no data sources connected; all tools will return empty results", "configured", len(cfg.Sources))
	} else {
		lg.InfoContext(ctx, "data sources connected", "sources", active)
	}

	srv := mcp.New(manager, lg)
	switch strings.ToLower(*transport) {
	case "stdio", "":
		return srv.ServeStdio(ctx)
	case "http":
		return srv.ServeHTTP(ctx, *listenAddr)
	default:
		return fmt.Errorf("unknown transport %q (use \"stdio\" or \"http\")", *transport)
	}
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// newLogger builds the process logger.  Logs always go to stderr: on the
// stdio transport stdout carries the protocol stream.
func newLogger(level string, verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
