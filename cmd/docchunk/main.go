package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/campaigndocs/docchunk-mcp/internal/mcp"
	"github.com/campaigndocs/docchunk-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("docchunk %s (built %s, %s build, sqlite driver %s)\n",
			version, buildTime, storage.BuildMode, storage.DriverName)
		return
	}

	// stdout carries the MCP protocol; everything else goes to stderr
	log.SetOutput(os.Stderr)

	if err := run(); err != nil {
		log.Fatalf("docchunk: %v", err)
	}
}

func run() error {
	dbPath := os.Getenv("DOCCHUNK_DB_PATH")
	if dbPath == "" {
		dbPath = mcp.DefaultDBPath
	}

	srv, err := mcp.NewServer(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("docchunk %s serving MCP on stdio (driver %s)", version, storage.DriverName)
		errChan <- srv.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("caught %v, shutting down", sig)
		cancel()
		return nil
	case err := <-errChan:
		return err
	}
}
