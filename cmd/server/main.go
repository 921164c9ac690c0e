package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ticketline/internal/config"
	"ticketline/internal/database"
	"ticketline/internal/handlers"
	"ticketline/internal/middleware"
	"ticketline/internal/repositories"
	"ticketline/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
	dbConfig := database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := database.NewConnection(dbConfig)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	logger.Info("database connection established")

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize repositories
	orderRepo := repositories.NewOrderRepository(db.DB)
	inventoryRepo := repositories.NewInventoryRepository(db.DB)
	ticketRepo := repositories.NewTicketRepository(db.DB)

	// Initialize services
	cartService := services.NewCartService(orderRepo, ticketRepo, cfg.Order)
	inventoryService := services.NewInventoryService(ticketRepo)
	ticketService := services.NewTicketService(ticketRepo, orderRepo)
	checkoutService := services.NewCheckoutService(orderRepo, inventoryRepo, ticketRepo, ticketService, cfg.Order)
	orderService := services.NewOrderService(orderRepo, cfg.Order)

	// Initialize handlers
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(checkoutService, orderService, ticketService, inventoryService)

	// Sweep abandoned carts in the background
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Order.CartExpirationMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := orderService.SweepExpiredCarts(logger); err != nil {
				logger.Error("cart sweep failed", "error", err)
			}
		}
	}()

	// Initialize router
	r := chi.NewRouter()

	// Basic middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.LoggingMiddleware)

	// Public routes
	r.Get("/events/{eventID}/ticket-types/{ticketTypeID}/availability", orderHandler.CheckAvailability)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/cart", cartHandler.GetCart)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Patch("/cart/items/{itemID}", cartHandler.UpdateItem)
		r.Delete("/cart/items/{itemID}", cartHandler.RemoveItem)

		r.Get("/orders", orderHandler.ListOrders)
		r.Post("/orders", orderHandler.CreateOrder)
		r.Get("/orders/stats", orderHandler.GetStatistics)
		r.Get("/orders/{orderID}", orderHandler.GetOrder)
		r.Get("/orders/{orderID}/details", orderHandler.GetOrderDetails)
		r.Get("/orders/{orderID}/tickets", orderHandler.GetOrderTickets)
		r.Post("/orders/{orderID}/checkout", orderHandler.Checkout)
		r.Post("/orders/{orderID}/status", orderHandler.CorrectStatus)
		r.Delete("/orders/{orderID}", orderHandler.CancelOrder)
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
