package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/weather-history/internal/auth"
	"github.com/ukydev/weather-history/internal/config"
	"github.com/ukydev/weather-history/internal/db"
	"github.com/ukydev/weather-history/internal/events"
	"github.com/ukydev/weather-history/internal/handlers"
	"github.com/ukydev/weather-history/internal/models"
	"github.com/ukydev/weather-history/internal/openmeteo"
	"github.com/ukydev/weather-history/internal/scheduler"
	"github.com/ukydev/weather-history/internal/services"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Service stopped with an error")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	client, err := db.ConnectMongo(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return err
	}

	locationStore := &db.MongoLocationCollection{Collection: database.Collection(db.LocationsCollection)}
	weatherStore := &db.MongoWeatherCollection{Collection: database.Collection(db.WeatherCollection)}
	users := &db.MongoUserCollection{Collection: database.Collection(db.UsersCollection)}

	if cfg.WeatherAPIURL == "" {
		log.Warn("WEATHER_API_URL is not set; weather ingestion will fail")
	}
	weatherClient := openmeteo.NewClient(openmeteo.Options{
		BaseURL: cfg.WeatherAPIURL,
		Hourly:  cfg.WeatherAPIHourly,
		Timeout: cfg.WeatherAPITimeout,
	})

	publisher := newPublisher(cfg)
	defer publisher.Close()

	weatherService := services.NewWeatherService(locationStore, weatherStore, weatherClient, publisher)
	locationService := services.NewLocationService(locationStore, weatherService, publisher)

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}
	if cfg.AuthEnabled && cfg.AdminUsername != "" {
		if err := ensureAdmin(ctx, authService, users, cfg); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	refresher := scheduler.New(locationService, weatherService, cfg.RefreshInterval)
	if err := refresher.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer refresher.Stop()

	router := handlers.NewRouter(handlers.RouterConfig{
		Locations: locationService,
		Weather:   weatherService,
		Health: handlers.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}),
		AuthEnabled:    cfg.AuthEnabled,
		AuthService:    authService,
		Users:          users,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		TrustProxy:     cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "auth": cfg.AuthEnabled}).Info("HTTP server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher connects to the MQTT broker when one is configured. A broker
// that cannot be reached only disables events.
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.MQTTBrokerURL == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.NewMQTTPublisher(cfg.MQTTBrokerURL, cfg.MQTTClientID, cfg.MQTTTopicPrefix)
	if err != nil {
		log.WithError(err).WithField("broker", cfg.MQTTBrokerURL).Warn("MQTT unavailable, events disabled")
		return events.NopPublisher{}
	}
	log.WithField("broker", cfg.MQTTBrokerURL).Info("Publishing events to MQTT")
	return publisher
}

// ensureAdmin creates the configured admin account unless the username is taken.
func ensureAdmin(ctx context.Context, authService *auth.Service, users db.UserCollection, cfg *config.Config) error {
	_, err := users.FindUserByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		log.WithField("username", cfg.AdminUsername).Debug("Admin account already exists")
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return err
	}

	if err := authService.ValidateUsername(cfg.AdminUsername); err != nil {
		return err
	}
	if err := authService.ValidateEmail(cfg.AdminEmail); err != nil {
		return err
	}
	if err := authService.ValidatePassword(cfg.AdminPassword); err != nil {
		return err
	}
	hash, err := authService.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin, err := users.InsertUser(ctx, models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": admin.ID.Hex(), "username": admin.Username}).Info("Admin account created")
	return nil
}
