package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/opendesk/ticketd/pkg/app/activity"
	"github.com/opendesk/ticketd/pkg/app/inactivity"
	"github.com/opendesk/ticketd/pkg/app/notify"
	appticket "github.com/opendesk/ticketd/pkg/app/ticket"
	"github.com/opendesk/ticketd/pkg/config"
	handlers "github.com/opendesk/ticketd/pkg/handlers/http"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
	"github.com/opendesk/ticketd/pkg/infra/events"
	"github.com/opendesk/ticketd/pkg/infra/httpx"
	infraLogger "github.com/opendesk/ticketd/pkg/infra/logger"
	"github.com/opendesk/ticketd/pkg/infra/prometheus"
	"github.com/opendesk/ticketd/pkg/infra/registry"
	"github.com/opendesk/ticketd/pkg/infra/transcript"
	"github.com/opendesk/ticketd/pkg/middleware"
	"github.com/opendesk/ticketd/pkg/server"
)

func main() {
	ctx := context.Background()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	if err := config.Load("./config"); err != nil {
		log.Printf("config: %v", err)
	}
	cfg := config.GetConfig()

	logger := infraLogger.NewLogger(cfg.Logging.Level)

	prometheus.Initialize()

	// infra
	reg := registry.NewInMemory()
	breaker := httpx.NewCircuitBreaker("chat-platform", 30*time.Second, 5)
	chat := chatplatform.NewRESTClient(chatplatform.Config{
		BaseURL: cfg.Chat.BaseURL,
		Token:   cfg.Chat.Token,
		GuildID: cfg.Chat.GuildID,
	}, nil, logger, breaker)
	renderer := transcript.NewRenderer(logger, 0)

	// app
	creator := appticket.NewCreator(logger, reg, chat, cfg)
	archiver := appticket.NewArchiver(logger, reg, chat, renderer, cfg.Chat.ArchiveCategoryID, cfg.Chat.LogChannelID)
	gate := notify.NewGate(logger, reg, cfg.Tickets.PingCooldown)
	pinger := notify.NewPinger(logger, reg, gate, chat)

	sweeper := inactivity.NewSweeper(
		logger,
		reg,
		chat,
		archiver,
		cfg.Tickets.SweepInterval,
		cfg.Tickets.InactivityThreshold,
		cfg.Tickets.AutoCloseGrace,
		nil,
	)
	sweeper.Start(ctx)

	recorder := activity.NewRecorder(logger, reg, archiver)
	feed := events.NewFeed(logger, cfg.Chat.EventsURL, cfg.Chat.Token, recorder)
	feed.Start(ctx)

	srv := server.NewInteractionServer(server.InteractionServerDI{
		Config: cfg,
		Logger: logger,
		MiddlewareTransport: middleware.Transport{
			RequestIDMiddleware:    middleware.NewRequestIDMiddleware(logger),
			PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		},
		HandlerTransport: handlers.HandlerTransport{
			OpenTicketHandler:   handlers.NewOpenTicketHandler(logger, creator, reg),
			CloseTicketHandler:  handlers.NewCloseTicketHandler(logger, reg, archiver, chat),
			ReopenTicketHandler: handlers.NewReopenTicketHandler(logger, &cfg.Chat, chat),
			PingSupportHandler:  handlers.NewPingSupportHandler(logger, reg, pinger),
			PingAuthorHandler:   handlers.NewPingAuthorHandler(logger, reg, pinger),
			AddMemberHandler:    handlers.NewAddMemberHandler(logger, reg, chat),
			RemoveMemberHandler: handlers.NewRemoveMemberHandler(logger, reg, chat),
		},
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.WithError(err).Fatal("interaction server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	feed.Shutdown()
	sweeper.Shutdown()
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("failed to stop interaction server")
	}
}
