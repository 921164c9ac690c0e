package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ticketline/internal/config"
	"ticketline/internal/database"
)

func main() {
	var (
		statusFlag = flag.Bool("status", false, "show applied/pending migrations")
		upFlag     = flag.Bool("up", false, "apply pending migrations")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch {
	case *statusFlag:
		if err := db.GetMigrationStatus(); err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
	case *upFlag:
		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("database is up to date")
	default:
		fmt.Fprintln(os.Stderr, "usage: migrate -up | -status")
		os.Exit(1)
	}
}
