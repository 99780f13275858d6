package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"dental-inventory/internal/handler"
	"dental-inventory/internal/middleware"
	"dental-inventory/internal/model"
	"dental-inventory/internal/repository"
	"dental-inventory/internal/service"
	"dental-inventory/internal/ws"
	"dental-inventory/pkg/config"
	"dental-inventory/pkg/database"
	"dental-inventory/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// 2. Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	// 3. WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Wiring
	itemRepo := repository.NewItemRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	staffRepo := repository.NewStaffRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL())

	opts := service.InventoryOptions{
		StatusRule: service.StatusRule{
			ImminentDays: cfg.ImminentDays,
			Precedence:   model.Precedence(cfg.StatusPrecedence),
		},
		UniqueNames: cfg.UniqueItemNames,
		Location:    cfg.Location(),
	}
	invService := service.NewInventoryService(db, itemRepo, txRepo, wsHub, opts)
	dashService := service.NewDashboardService(itemRepo, txRepo, opts)
	authService := service.NewAuthService(staffRepo, tokens)
	staffService := service.NewStaffService(staffRepo, privilegeRepo, roleRepo)

	// 5. Seed roles, privileges and the first administrator
	if err := staffService.SeedAccessControl(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: failed to seed access control: %v", err)
	}

	// 6. Fiber
	app := fiber.New(fiber.Config{
		AppName: "Dental Inventory v1.0",
	})
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	handler.Register(app, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Inventory: handler.NewInventoryHandler(invService),
		Dashboard: handler.NewDashboardHandler(dashService),
		Staff:     handler.NewStaffHandler(staffService),
		Role:      handler.NewRoleHandler(roleRepo, privilegeRepo),
	}, middleware.RequireAuth(staffRepo, tokens))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Serve until interrupted
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server exited")
}
