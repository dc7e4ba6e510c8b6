package main

import (
	"os"
	"strconv"
)

// config holds server settings, loaded from the environment.
type config struct {
	Port    string
	DBPath  string
	Workers int // evaluation workers per job; 0 means NumCPU
}

func loadConfig() config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/jobs.db"
	}

	workers := 0
	if s := os.Getenv("WORKERS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			workers = n
		}
	}

	return config{
		Port:    port,
		DBPath:  dbPath,
		Workers: workers,
	}
}
