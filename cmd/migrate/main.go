package main

import (
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/bracket-engine/internal/config"
	"github.com/jstittsworth/bracket-engine/internal/store"
	"github.com/jstittsworth/bracket-engine/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := store.NewRepository(db.DB)
	if err := repo.Migrate(); err != nil {
		logrus.Fatalf("failed to run migrations: %v", err)
	}

	logrus.Info("migrations completed successfully")
}
