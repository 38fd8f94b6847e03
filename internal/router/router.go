package router

import (
	"log"

	"github.com/anonto42/microblog/backend/internal/cache"
	"github.com/anonto42/microblog/backend/internal/handlers"
	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, mongoDBName string) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	groupRepo := repositories.NewPostgresGroupRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database(mongoDBName))

	pageCache := cache.NewPageCache(cache.DefaultTTL)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Public read routes ---
	contentHandler := handlers.NewContentHandler(postRepo, userRepo, groupRepo, commentRepo, followRepo, pageCache)
	contentHandler.RegisterContentRoutes(e)
	e.GET("/profile/:username/", contentHandler.Profile, middleware.OptionalAuth())
	log.Println("Content routes configured.")

	// --- Protected routes (redirect anonymous callers to login) ---
	authed := e.Group("", middleware.RequireAuth())

	authed.GET("/follow/", contentHandler.FollowIndex)
	authed.POST("/admin/cache/clear", contentHandler.ClearCache)

	authoringHandler := handlers.NewAuthoringHandler(postRepo, groupRepo, commentRepo)
	authoringHandler.RegisterAuthoringRoutes(authed)
	log.Println("Authoring routes configured.")

	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(authed)
	log.Println("Follow routes configured.")

	groupHandler := handlers.NewGroupHandler(groupRepo)
	groupHandler.RegisterGroupRoutes(e, authed)
	log.Println("Group routes configured.")

	log.Println("All routes configured.")
}
