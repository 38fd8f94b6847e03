package main

import (
	"log"

	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/anonto42/microblog/backend/internal/router"
	"github.com/anonto42/microblog/backend/internal/seed"
	"github.com/anonto42/microblog/backend/pkg/config"
	"github.com/anonto42/microblog/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, cfg.MongoDBName)

	// Validator
	e.Validator = validators.NewValidator()

	// Development fixtures
	if cfg.SeedData {
		postRepo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDBName))
		if err := seed.SeedDatabase(db.Postgres, postRepo); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
