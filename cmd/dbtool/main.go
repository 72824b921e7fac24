package main

import (
	"context"
	"flag"
	"geodistance-service/internal/adapters/cache"
	"geodistance-service/internal/config"
	"geodistance-service/internal/platform/db"
	"log"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool prepares the Postgres geocode store: it creates the schema and
// optionally purges expired rows.
func main() {
	purge := flag.Bool("purge", false, "delete expired geocode rows after schema init")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing geocode store schema...")
	if err := cache.InitGeocodeSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *purge {
		n, err := cache.NewSQLGeocodeStore(conn).Purge(ctx)
		if err != nil {
			log.Fatalf("purge failed: %v", err)
		}
		log.Printf("Purged %d expired rows.", n)
	}
}
