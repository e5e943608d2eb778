// Command libpx-smoke opens one connection, runs "SELECT 1", and prints the
// result. It exists to exercise the library end-to-end against a real
// server; it is not a REPL and takes no flags, reading its connection
// parameters from the same PG* environment variables pgconn's Config
// recognizes.
package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/drjokepu/libpx/libpx"
	"github.com/drjokepu/libpx/log/zerologadapter"
	"github.com/drjokepu/libpx/tracelog"
)

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	cfg := &libpx.Config{
		Host:     envOr("PGHOST", "127.0.0.1"),
		Database: envOr("PGDATABASE", "postgres"),
		User:     envOr("PGUSER", "postgres"),
		Password: os.Getenv("PGPASSWORD"),
		Tracer: &tracelog.TraceLog{
			Logger:   zerologadapter.NewLogger(logger),
			LogLevel: tracelog.LogLevelInfo,
		},
	}
	if portStr := os.Getenv("PGPORT"); portStr != "" {
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			log.Fatalf("invalid PGPORT %q: %v", portStr, err)
		}
		cfg.Port = uint16(port)
	}

	conn := libpx.NewConnection(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.Open(ctx); err != nil {
		log.Fatalf("open: %v", err)
	}
	defer conn.Close()

	results, err := libpx.NewQuery(conn, "SELECT 1").Execute(ctx)
	if err != nil {
		log.Fatalf("query: %v", err)
	}

	for _, r := range results.Results {
		for row := 0; row < r.RowCount(); row++ {
			for col := 0; col < r.ColumnCount(); col++ {
				log.Printf("%s = %s", r.ColumnName(col), r.CellText(col, row))
			}
		}
	}
}
