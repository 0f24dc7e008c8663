package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/devconf/workshop-reservation/internal/booking"
	"github.com/devconf/workshop-reservation/internal/config"
	"github.com/devconf/workshop-reservation/internal/database"
	"github.com/devconf/workshop-reservation/internal/handler"
	"github.com/devconf/workshop-reservation/internal/identity"
	"github.com/devconf/workshop-reservation/internal/queue"
	"github.com/devconf/workshop-reservation/internal/repository"
	"github.com/devconf/workshop-reservation/internal/router"
	queue_publisher "github.com/devconf/workshop-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, database.Pool{
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	attendees := repository.NewAttendeeRepo(db)
	gateway := identity.NewStoreGateway(attendees)
	coordinator := booking.New(store, gateway, queue_publisher.NewPublisher())

	// nil client disables rate limiting and response caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and catalog cache disabled")
	}

	e := echo.New()
	router.RegisterPublic(e,
		handler.NewPublicHandler(store.Sessions()),
		handler.NewAuthHandler(cfg, attendees),
		rdb,
	)
	router.RegisterAttendee(e, handler.NewReservationHandler(coordinator), cfg.JWTSecret, rdb)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg, store.Sessions(), store.Selections(), attendees, coordinator), cfg.JWTSecret)

	// Confirmation events are consumed in-process; the consumer keeps
	// its own reconnect loop and never takes the server down.
	go func() {
		if err := queue.StartSelectionConsumer(); err != nil {
			log.Printf("selection consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
