package main

import (
	"flag"
	"log"

	"github.com/tropicaldog17/folio/internal/config"
	"github.com/tropicaldog17/folio/internal/db"
)

// Applies the numbered SQL files in migrations/ to the configured Postgres
// database. SQLite stores are migrated automatically on connect.
func main() {
	configPath := flag.String("config", "", "path to YAML config (default $FOLIO_CONFIG)")
	dir := flag.String("dir", "migrations", "directory holding NNN_name.sql files")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if cfg.Database.Driver != db.DriverPostgres {
		log.Fatalf("migrate only applies to postgres, configured driver is %q", cfg.Database.Driver)
	}

	sqlDB, err := db.OpenPostgres(cfg.Database.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer sqlDB.Close()

	applied, err := db.RunMigrations(sqlDB, *dir)
	if err != nil {
		log.Fatal("Migration failed:", err)
	}
	if len(applied) == 0 {
		log.Println("No pending migrations")
		return
	}
	for _, id := range applied {
		log.Printf("Applied migration %s", id)
	}
}
