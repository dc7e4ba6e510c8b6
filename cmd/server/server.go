// The server accepts Julia set field evaluation jobs over HTTP, runs them
// on a local worker pool, and reports progress to websocket subscribers.
// Finished fields can be fetched as raw counts or as a rendered PNG.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	cfg := loadConfig()

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	store, err := openStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	a := newApp(store, newProgressHub(), cfg.Workers)
	r := newRouter(a)

	log.Printf("server listening on %s (%d workers per job)", cfg.Port, workersOrDefault(cfg.Workers))
	return r.Run(cfg.Port)
}

func defaultWorkers() int {
	return runtime.NumCPU()
}

func workersOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return defaultWorkers()
}
