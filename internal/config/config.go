// Package config reads server configuration from flags and the environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Port            int
	DatabasePath    string
	LogLevel        string
	RegelVersjon    string
	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Port:            8080,
		DatabasePath:    "regler.db",
		LogLevel:        os.Getenv("LOG_LEVEL"),
		RegelVersjon:    os.Getenv("REGEL_VERSJON"),
		ShutdownTimeout: 30 * time.Second,
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 {
			return Server{}, fmt.Errorf("invalid PORT %q", port)
		}
		cfg.Port = p
	}
	if db := os.Getenv("DATABASE_PATH"); db != "" {
		cfg.DatabasePath = db
	}
	return cfg, nil
}

// Load reads the environment and then lets command-line flags override it.
func Load(args []string) (Server, error) {
	cfg, err := FromEnv()
	if err != nil {
		return Server{}, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, `SQLite database path (":memory:" for in-memory)`)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&cfg.RegelVersjon, "regel-versjon", cfg.RegelVersjon, "Rule version stamped on every result")
	if err := fs.Parse(args); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Addr returns the listen address.
func (s Server) Addr() string { return fmt.Sprintf(":%d", s.Port) }
