package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/bank"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/config"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/economy"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/events"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/handler"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/inventory"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/middleware"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}

	// Redis is optional: without it events are dropped, everything else
	// keeps working.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisAddr != "" {
		client, err := events.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		publisher = events.NewRedisPublisher(client)
	}

	bankStore, err := bank.OpenStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open bank store: %v", err)
	}
	economyStore, err := economy.OpenStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open economy store: %v", err)
	}
	inventoryStore, err := inventory.OpenStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open inventory store: %v", err)
	}

	// --- Service wiring ---
	bankSvc := bank.NewService(bankStore, publisher, cfg.MaxPinAttempts, time.Duration(cfg.PinLockMinutes)*time.Minute)
	economySvc := economy.NewService(economyStore, bankSvc, bankSvc, publisher)
	inventorySvc := inventory.NewService(inventoryStore, publisher, cfg.WeightCapacityKg,
		time.Duration(cfg.HungerFullMinutes)*time.Minute,
		time.Duration(cfg.ThirstFullMinutes)*time.Minute)

	secret := []byte(cfg.JWTSecret)
	authHandler := handler.NewAuthHandler(secret, cfg.Staff)
	bankHandler := handler.NewBankHandler(bankSvc, economySvc)
	economyHandler := handler.NewEconomyHandler(economySvc, bankSvc)
	inventoryHandler := handler.NewInventoryHandler(inventorySvc)
	catalogHandler := handler.NewCatalogHandler()

	// Setup router
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.POST("/v1/auth/login", authHandler.Login)

	v1 := router.Group("/v1", middleware.AuthMiddleware(secret))
	{
		bankGrp := v1.Group("/bank")
		{
			bankGrp.GET("/users/:userId/profile", bankHandler.GetProfile)
			bankGrp.PUT("/users/:userId/pin", bankHandler.SetPin)
			bankGrp.POST("/users/:userId/pin/verify", bankHandler.VerifyPin)
			bankGrp.PATCH("/users/:userId/status", bankHandler.SetStatus)
			bankGrp.GET("/users/:userId/history", bankHandler.GetHistory)
			bankGrp.POST("/enterprises", bankHandler.CreateEnterprise)
			bankGrp.GET("/enterprises/:ref", bankHandler.GetEnterprise)
			bankGrp.PATCH("/enterprises/:ref/status", bankHandler.SetEnterpriseStatus)
		}

		eco := v1.Group("/economy")
		{
			eco.GET("/users", economyHandler.ListAccounts)
			eco.GET("/users/:userId", economyHandler.GetAccount)
			eco.GET("/users/:userId/balance", economyHandler.GetBalance)
			eco.POST("/users/:userId/adjust", economyHandler.Adjust)
			eco.PUT("/users/:userId/balance", economyHandler.SetBalance)
			eco.POST("/users/:userId/deposit", economyHandler.Deposit)
			eco.POST("/users/:userId/withdraw", economyHandler.Withdraw)
			eco.PATCH("/users/:userId/blacklist", economyHandler.SetBlacklist)
			eco.POST("/transfers", economyHandler.Transfer)
			eco.POST("/transfers/enterprise", economyHandler.PayEnterprise)
			eco.POST("/transfers/salary", economyHandler.PaySalary)
			eco.GET("/enterprises/:ref", economyHandler.GetEnterpriseAccount)
			eco.GET("/enterprises/:ref/balance", economyHandler.GetEnterpriseBalance)
			eco.POST("/enterprises/:ref/adjust", economyHandler.AdjustEnterprise)
		}

		inv := v1.Group("/inventory")
		{
			inv.GET("/users/:userId", inventoryHandler.GetInventory)
			inv.GET("/users/:userId/weight", inventoryHandler.GetWeight)
			inv.POST("/users/:userId/items", inventoryHandler.AddItem)
			inv.POST("/users/:userId/items/remove", inventoryHandler.RemoveItem)
			inv.POST("/users/:userId/consume", inventoryHandler.Consume)
			inv.PATCH("/users/:userId/stats", inventoryHandler.ChangeStats)
			inv.DELETE("/users/:userId/items", inventoryHandler.Clear)
		}

		v1.GET("/catalog/items", catalogHandler.ListItems)
		v1.GET("/catalog/resolve", catalogHandler.ResolveItem)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	log.Printf("slarpd starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Flush pending writes before exit so nothing coalesced is lost.
	for name, flush := range map[string]func() error{
		"bank":      bankStore.Flush,
		"economy":   economyStore.Flush,
		"inventory": inventoryStore.Flush,
	} {
		if err := flush(); err != nil {
			log.Printf("Failed to flush %s store: %v", name, err)
		}
	}
}
