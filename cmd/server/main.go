package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/biciguard/biciguard-backend/internal/config"
	"github.com/biciguard/biciguard-backend/internal/database"
	"github.com/biciguard/biciguard-backend/internal/handlers"
	"github.com/biciguard/biciguard-backend/internal/middleware"
	"github.com/biciguard/biciguard-backend/internal/routes"
	"github.com/biciguard/biciguard-backend/internal/services"
	"github.com/biciguard/biciguard-backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	mongo, err := database.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongo.Disconnect()

	// Connect to Redis (rate limiting + panic alert fan-out)
	log.Printf("Connecting to Redis...")
	redisClient, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	st := store.New(mongo.DB)
	if err := st.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}

	// Alert hub: Redis subscriber fans panic alerts out to WebSocket clients
	alertHub := services.NewAlertHub(redisClient)
	alertHub.Start(context.Background())

	// Services
	userService := services.NewUserService(st.Users)
	panicService := services.NewPanicService(st.PanicButtons, alertHub)
	deviceService := services.NewDeviceService(st.Devices, st.PanicButtons, st.Impacts)
	impactService := services.NewImpactService(st.Impacts)
	routeService := services.NewRouteService(st.Routes)

	api := &routes.API{
		Users:   handlers.NewUserHandler(userService),
		Devices: handlers.NewDeviceHandler(deviceService),
		Impacts: handlers.NewImpactHandler(impactService),
		Panic:   handlers.NewPanicButtonHandler(panicService),
		Routes:  handlers.NewRouteHandler(routeService),
		System:  handlers.NewSystemHandler(st, userService, deviceService),
		Alerts:  handlers.NewAlertsHandler(alertHub),
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(redisClient))

	// Health check (no dependencies)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, api)

	log.Printf("🚀 BiciGuard backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
