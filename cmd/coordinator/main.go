package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Itay01/Distributed-MD5-Cracker/internal/config"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/coordinator"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/logger"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/server"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/status"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseCLIArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Global().Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coord := coordinator.New(cfg.RangeEnd, cfg.BlockUnit)

	srv := server.New(cfg, coord)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	var statusSrv *status.Server
	if addr := cfg.StatusAddr(); addr != "" {
		statusSrv = status.NewServer(coord, addr)
	}

	g, ctx := errgroup.WithContext(ctx)

	if statusSrv != nil {
		g.Go(func() error {
			if err := statusSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server failed: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down on interrupt")
		case <-srv.Done():
		}

		srv.Shutdown()
		if statusSrv != nil {
			if err := statusSrv.Stop(); err != nil {
				logger.Warn("Error stopping status server: %v", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if value, ok := coord.FoundValue(); ok {
		logger.Info("Number %d found. Shutting down coordinator.", value)
		fmt.Printf("Found: %d\n", value)
	} else {
		logger.Info("Coordinator shutting down.")
	}

	return nil
}

// parseCLIArgs parses flags, layering them over the config file (which
// itself layers over the defaults)
func parseCLIArgs(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("coordinator", flag.ContinueOnError)

	configPath := fs.String("config", "", "Path to JSON config file")
	host := fs.String("host", "", "Bind address for the worker listener")
	port := fs.Int("port", 0, "Worker listener port")
	statusPort := fs.Int("status-port", -1, "Status endpoint port (0 disables)")
	target := fs.String("target", "", "Target MD5 digest (32 hex characters)")
	rangeEnd := fs.Int64("range-end", -1, "Inclusive upper bound of the keyspace")
	blockUnit := fs.Int64("block-unit", 0, "Per-core block size")
	maxConns := fs.Int("max-conns", 0, "Maximum concurrent worker connections")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error, none")
	logFile := fs.String("log-file", "", "Log file path (default stderr)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *statusPort >= 0 {
		cfg.StatusPort = *statusPort
	}
	if *target != "" {
		cfg.TargetHash = *target
	}
	if *rangeEnd >= 0 {
		cfg.RangeEnd = *rangeEnd
	}
	if *blockUnit != 0 {
		cfg.BlockUnit = *blockUnit
	}
	if *maxConns != 0 {
		cfg.MaxConns = *maxConns
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFile != "" {
		cfg.LogPath = *logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
