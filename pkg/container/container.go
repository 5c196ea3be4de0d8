package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"foodgram-backend/internal/config"
	infraCache "foodgram-backend/internal/infrastructure/cache"
	"foodgram-backend/internal/infrastructure/database"
	"foodgram-backend/internal/infrastructure/storage"
	"foodgram-backend/internal/shared/middleware"
	"foodgram-backend/pkg/jwt"

	// User domain
	"foodgram-backend/internal/domains/user"
	userHandler "foodgram-backend/internal/domains/user/handler"
	userRepo "foodgram-backend/internal/domains/user/repository"
	userService "foodgram-backend/internal/domains/user/service"

	// Recipe domain
	"foodgram-backend/internal/domains/recipe"
	recipeHandler "foodgram-backend/internal/domains/recipe/handler"
	recipeRepo "foodgram-backend/internal/domains/recipe/repository"
	recipeService "foodgram-backend/internal/domains/recipe/service"

	// Relation domain
	"foodgram-backend/internal/domains/relation"
	relationHandler "foodgram-backend/internal/domains/relation/handler"
	relationRepo "foodgram-backend/internal/domains/relation/repository"
	relationService "foodgram-backend/internal/domains/relation/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the application dependency graph.
type Container struct {
	// Infrastructure
	Config       *config.Config
	DB           *database.PostgresDB
	Cache        *infraCache.RedisCache
	JWTManager   *jwt.Manager
	Blacklist    *jwt.Blacklist
	Images       *storage.ImageStore
	LoginLimiter *middleware.IPRateLimiter

	// Repositories
	UserRepo     user.Repository
	RecipeRepo   recipe.Repository
	RelationRepo relation.Repository

	// Services
	UserService     user.Service
	RecipeService   recipe.Service
	RelationService relation.Service

	// Handlers
	UserHandler     *userHandler.UserHandler
	RecipeHandler   *recipeHandler.RecipeHandler
	RelationHandler *relationHandler.RelationHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the graph in dependency order:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	// Redis only backs token revocation; a failure is logged and the API still starts.
	log.Println("🔴 Connecting to Redis...")

	c.Cache = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Cache.Connect(ctx); err != nil {
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL())
	c.Blacklist = jwt.NewBlacklist(c.Cache)
	c.LoginLimiter = middleware.NewIPRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	// ========================================
	// STEP 4: INITIALIZE OBJECT STORAGE
	// ========================================
	log.Println("🪣 Connecting to MinIO...")

	objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Images = storage.NewImageStore(storage.NewImageProcessor(), objects)
	log.Printf("✅ MinIO bucket ready (%s)", cfg.MinIO.Bucket)

	// ========================================
	// STEP 5: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	log.Println("📦 Initializing repositories...")
	c.initRepositories()

	log.Println("⚙️  Initializing services...")
	c.initServices()

	log.Println("🎯 Initializing handlers...")
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.RecipeRepo = recipeRepo.NewPostgresRepository(pool)
	c.RelationRepo = relationRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.JWTManager,
		c.Blacklist,
		c.Images,
	)

	c.RecipeService = recipeService.NewRecipeService(
		c.RecipeRepo,
		c.Images,
		c.Config.App.PublicURL,
	)

	// relations read recipes through the recipe repository
	c.RelationService = relationService.NewRelationService(
		c.RelationRepo,
		c.RecipeRepo,
		c.Images.URL,
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.RecipeHandler = recipeHandler.NewRecipeHandler(c.RecipeService)
	c.RelationHandler = relationHandler.NewRelationHandler(c.RelationService)
}

// Cleanup releases pool and redis connections on shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("⚠️  Failed to close database: %v", err)
		} else {
			log.Println("✅ Database connections closed")
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
