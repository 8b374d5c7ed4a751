package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Applies (or rolls back) the SQL migrations in ./migrations against DB_ADDR.
//
//	go run ./cmd/migrate            # migrate up
//	go run ./cmd/migrate -down 1    # roll back one step
func main() {
	var (
		path string
		down int
	)
	flag.StringVar(&path, "path", "migrations", "directory with migration files")
	flag.IntVar(&down, "down", 0, "number of migrations to roll back (0 migrates up)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	addr := os.Getenv("DB_ADDR")
	if addr == "" {
		log.Fatal("DB_ADDR is required")
	}

	db, err := sql.Open("postgres", addr)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", path),
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatalf("create migrate instance: %v", err)
	}

	if down > 0 {
		err = m.Steps(-down)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("run migrations: %v", err)
	}

	version, dirty, _ := m.Version()
	log.Printf("migrations done (version=%d dirty=%v)", version, dirty)
}
