package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventseat/reservation-service/config"
	"github.com/eventseat/reservation-service/internal/clock"
	repository "github.com/eventseat/reservation-service/internal/database/postgres"
	rediscache "github.com/eventseat/reservation-service/internal/database/redis"
	"github.com/eventseat/reservation-service/internal/service"
	"github.com/eventseat/reservation-service/internal/transport"
	"github.com/eventseat/reservation-service/internal/worker"

	"github.com/eventseat/reservation-service/pkg/postgres"
	"github.com/eventseat/reservation-service/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdated TLS certificates
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElasticSearch in the future
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	eventRepo := repository.NewEventRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	// Initialize event cache
	var eventCache service.EventCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		eventCache = rediscache.NewEventCache(redisClient, cfg.Reservation.CacheTTL)
		logrus.Info("Redis event cache initialized")
	} else {
		logrus.Warn("Redis disabled, event cache is off")
	}

	// Initialize services
	reservationService := service.NewReservationService(
		eventRepo,
		reservationRepo,
		eventCache,
		clock.NewSystem(),
		service.ReservationConfig{
			HoldDuration:           cfg.Reservation.HoldDuration,
			MaxSeatsPerReservation: cfg.Reservation.MaxSeatsPerReservation,
		},
	)
	eventService := service.NewEventService(eventRepo, reservationRepo, eventCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize expiration worker
	if cfg.Worker.Enabled {
		expirationWorker := worker.NewExpirationWorker(reservationService, cfg.Worker.SweepInterval)
		go expirationWorker.Start(ctx)
		logrus.Info("Expiration worker started")
	}

	// Initialize handlers
	eventHandler := transport.NewEventHandler(eventService)
	reservationHandler := transport.NewReservationHandler(reservationService)

	// Setup HTTP server
	if cfg.Server.Env == "production" || cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(eventHandler, reservationHandler)); err != nil {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
