package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"realty_backend/internal/catalog"
	"realty_backend/internal/controller"
	"realty_backend/internal/middleware"
	"realty_backend/internal/model"
	"realty_backend/pkg/cache"
	"realty_backend/pkg/config"
	"realty_backend/pkg/cron"
	"realty_backend/pkg/database"
	"realty_backend/pkg/email"
	"realty_backend/pkg/seed"
	"realty_backend/pkg/utils/jwt"
	"realty_backend/pkg/utils/storage"
)

func setupRoutes(app *fiber.App) {
	app.Get("/health", controller.Health)

	api := app.Group("/api")

	authed := middleware.AuthMiddleware()
	agentOnly := middleware.RequireRole(model.RoleAgent, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	api.Get("/me", authed, controller.GetMe)

	// Property Routes; /my must be registered before /:id
	properties := api.Group("/properties")
	properties.Get("/", controller.ListProperties)
	properties.Get("/my", authed, agentOnly, controller.ListMyProperties)
	properties.Get("/:id", controller.GetProperty)
	properties.Post("/", authed, agentOnly, controller.CreateProperty)
	properties.Put("/:id", authed, middleware.CheckPropertyOwnership(), controller.UpdateProperty)
	properties.Delete("/:id", authed, middleware.CheckPropertyOwnership(), controller.DeleteProperty)
	properties.Post("/:property_id/images", authed, controller.UploadPropertyImage)
	properties.Delete("/images/:image_id", authed, controller.DeletePropertyImage)
	properties.Post("/:property_id/enquiries", middleware.OptionalAuth(), controller.CreateEnquiry)

	// Agent directory
	api.Get("/agents", controller.ListAgents)
	api.Get("/agents/:id", controller.GetAgent)

	// Settings routes
	settings := api.Group("/settings", authed)
	settings.Get("/profile", controller.GetProfile)
	settings.Put("/profile", controller.UpdateProfile)
	settings.Post("/avatar", controller.UploadAvatar)

	// Enquiry inbox
	enquiries := api.Group("/enquiries", authed, agentOnly)
	enquiries.Get("/", controller.ListEnquiries)
	enquiries.Put("/:id/status", controller.UpdateEnquiryStatus)

	// Admin routes
	admin := api.Group("/admin", authed, adminOnly)
	admin.Get("/users", controller.ListUsers)
	admin.Put("/users/:id/role", controller.UpdateUserRole)
	admin.Delete("/users/:id", controller.DeleteUser)
}

func newUploader(ctx context.Context, cfg config.StorageConfig, app *fiber.App) (storage.Uploader, error) {
	if cfg.Bucket != "" {
		return storage.NewS3(ctx, storage.S3Config{
			AccountID:     cfg.AccountID,
			AccessKey:     cfg.AccessKey,
			SecretKey:     cfg.SecretKey,
			Bucket:        cfg.Bucket,
			PublicBaseURL: cfg.PublicBaseURL,
		})
	}

	log.Printf("No bucket configured, storing uploads under %s", cfg.LocalDir)
	app.Static("/uploads", cfg.LocalDir)
	return &storage.Local{Dir: cfg.LocalDir, URLPrefix: "/uploads"}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Could not load configuration:", err)
	}

	jwt.Init(cfg.JWT.Secret, cfg.JWT.TTL)

	if err := database.InitDB(cfg.Database); err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	err = database.Migrate(
		&model.User{},
		&model.Property{},
		&model.PropertyImage{},
		&model.Enquiry{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	if cfg.Seed {
		if err := seed.Run(database.GetDB()); err != nil {
			log.Printf("Seed failed: %v", err)
		}
	}

	if err := catalog.Default.Load(database.GetDB()); err != nil {
		log.Fatal("Could not load catalog:", err)
	}
	log.Printf("Catalog loaded: %d properties, %d agents",
		len(catalog.Default.Properties()), len(catalog.Default.Agents()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	responseCache, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err != nil {
		log.Printf("Redis unavailable, serving without response cache: %v", err)
	}
	defer responseCache.Close()

	var mailer *email.Service
	if cfg.Email.APIKey != "" {
		if mailer, err = email.NewService(cfg.Email.APIKey, cfg.Email.From); err != nil {
			log.Fatal("Could not initialize email service:", err)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 12 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.Origins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	uploader, err := newUploader(ctx, cfg.Storage, app)
	if err != nil {
		log.Fatal("Could not initialize storage:", err)
	}

	controller.Init(controller.Options{
		Cache:         responseCache,
		Uploader:      uploader,
		Mailer:        mailer,
		PageSize:      cfg.Listing.PageSize,
		AgentPageSize: cfg.Listing.AgentPageSize,
	})

	refresher, err := cron.InitCatalogRefreshCron(cfg.Listing.RefreshCron, func() error {
		return controller.RefreshCatalog(context.Background())
	})
	if err != nil {
		log.Fatal("Could not schedule catalog refresh:", err)
	}
	defer refresher.Stop()

	if mailer != nil {
		digest, err := cron.InitEnquiryDigestCron(cfg.Email.DigestCron, database.GetDB(), mailer)
		if err != nil {
			log.Fatal("Could not schedule enquiry digest:", err)
		}
		defer digest.Stop()
	}

	setupRoutes(app)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
