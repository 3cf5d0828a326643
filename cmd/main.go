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

	"github.com/yungbote/givebridge-backend/internal/db"
	"github.com/yungbote/givebridge-backend/internal/http/handlers"
	"github.com/yungbote/givebridge-backend/internal/http/middleware"
	"github.com/yungbote/givebridge-backend/internal/platform/envutil"
	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/platform/redisbus"
	"github.com/yungbote/givebridge-backend/internal/platform/resend"
	"github.com/yungbote/givebridge-backend/internal/realtime"
	"github.com/yungbote/givebridge-backend/internal/repos"
	"github.com/yungbote/givebridge-backend/internal/server"
	"github.com/yungbote/givebridge-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := envutil.String("JWT_SECRET_KEY", "defaultsecret")
	port := envutil.String("PORT", "8080")

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	campaignRepo := repos.NewCampaignRepo(thePG, log)
	donationRepo := repos.NewDonationRepo(thePG, log)

	// Shutdown context: the feed forwarder exits when the process is told
	// to stop.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Realtime feed
	log.Info("Setting up realtime hub now...")
	hub := realtime.NewHub(log)
	var bus redisbus.Bus
	if os.Getenv("REDIS_ADDR") != "" {
		bus, err = redisbus.New(log)
		if err != nil {
			log.Warn("Could not init redis bus; running single-instance feed", "error", err)
		} else {
			defer bus.Close()
			if err := bus.StartForwarder(ctx, hub.Broadcast); err != nil {
				log.Warn("Could not start redis feed forwarder", "error", err)
			}
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	var mailer services.Mailer
	resendClient, err := resend.NewFromEnv(log)
	if err != nil {
		log.Warn("Could not init Resend client; thank-you emails disabled", "error", err)
		mailer = services.NewNopMailer(log)
	} else {
		mailer = services.NewMailer(log, resendClient)
	}
	feed := services.NewDonationFeed(log, hub, bus)
	donationService := services.NewDonationService(thePG, log, donationRepo, campaignRepo, userRepo, mailer, feed)
	campaignService := services.NewCampaignService(thePG, log, campaignRepo, feed)

	// Handlers
	log.Info("Setting up Handlers from main...")
	donationHandler := handlers.NewDonationHandler(log, donationService)
	campaignHandler := handlers.NewCampaignHandler(log, campaignService)
	eventsHandler := handlers.NewEventsHandler(log, hub)
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	router := server.NewRouter(server.RouterConfig{
		Log:             log,
		AuthMiddleware:  authMiddleware,
		DonationHandler: donationHandler,
		CampaignHandler: campaignHandler,
		EventsHandler:   eventsHandler,
	})

	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Starting HTTP server", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("HTTP server exited", "error", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}
