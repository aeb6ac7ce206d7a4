package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prepdeck/backend/repository"
	"github.com/prepdeck/backend/services"
)

func main() {
	// Setup structured logging with JSON format
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	config := services.LoadConfig()

	server := services.NewServer(config)

	// Initialize database connection
	if config.Database.URL != "" {
		db, err := repository.Connect(
			context.Background(),
			config.Database.URL,
			config.Database.LogLevel,
			config.Database.MaxIdleConns,
			config.Database.MaxOpenConns,
		)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		slog.Info("Connected to database")

		repo := repository.NewGORMRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}

		server.SetDatabase(repo, db)

		if config.Database.Seed {
			var auth *services.AuthService
			if config.JWT.Secret != "" {
				auth = services.NewAuthService(repo, config.JWT.Secret)
			}
			seeder := services.NewDatabaseSeeder(repo, auth)
			if err := seeder.SeedDatabase(); err != nil {
				slog.Error("Failed to seed database", "error", err)
			}
		}
	} else {
		slog.Warn("Database URL not configured, running without database")
	}

	if err := server.InitializeServices(); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	server.Start()
}
