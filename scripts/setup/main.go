// setup prepares the PostgreSQL database for the search API.
//
// It creates the search_logs table and verifies that the pgvector extension
// and the two catalog match functions are installed. The announcement tables
// and their embeddings are owned by the ingest pipeline and are only checked,
// never created, here.
//
// Environment variables:
//
//	POSTGRES_URI - PostgreSQL connection string
//
// Usage:
//
//	go run ./scripts/setup
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/announcement-search-api/pkg/schema/config"
)

const createSearchLogsSQL = `
CREATE TABLE IF NOT EXISTS search_logs (
    id           BIGSERIAL PRIMARY KEY,
    query        TEXT NOT NULL,
    source       TEXT NOT NULL,
    result_limit INTEGER NOT NULL,
    result_count INTEGER NOT NULL,
    top_score    DOUBLE PRECISION,
    duration_ms  BIGINT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_search_logs_created_at ON search_logs (created_at);
`

var matchFunctions = []string{
	"match_kstartup_announcements",
	"match_bizinfo_announcements",
}

func main() {
	checkOnly := flag.Bool("check", false, "Only verify the schema, create nothing")
	flag.Parse()

	godotenv.Load()

	cfg := config.GetConfig()
	if cfg.PostgresURI == "" {
		log.Fatal("POSTGRES_URI environment variable is required")
	}

	ctx := context.Background()
	dbConn, err := sqlx.ConnectContext(ctx, "postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbConn.Close()

	if !*checkOnly {
		log.Println("Creating search_logs table...")
		if _, err := dbConn.ExecContext(ctx, createSearchLogsSQL); err != nil {
			log.Fatalf("Failed to create search_logs table: %v", err)
		}
		log.Println("search_logs table ready")
	}

	var hasVector bool
	if err := dbConn.GetContext(ctx, &hasVector,
		`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')`); err != nil {
		log.Fatalf("Failed to check pgvector extension: %v", err)
	}
	if hasVector {
		log.Println("pgvector extension installed")
	} else {
		log.Println("WARNING: pgvector extension is not installed; the pgvector backend will not work")
	}

	for _, fn := range matchFunctions {
		var exists bool
		if err := dbConn.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = $1)`, fn); err != nil {
			log.Fatalf("Failed to check function %s: %v", fn, err)
		}
		if exists {
			log.Printf("Match function %s found", fn)
		} else {
			log.Printf("WARNING: match function %s is missing; run the ingest pipeline migrations", fn)
		}
	}

	log.Println("Setup complete")
}
