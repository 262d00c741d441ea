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

	"nosbot/domain/model"
	"nosbot/infrastructure/cache"
	geminiclient "nosbot/infrastructure/clients/gemini"
	youtubeclient "nosbot/infrastructure/clients/youtube"
	"nosbot/infrastructure/configuration"
	"nosbot/infrastructure/dispatch"
	"nosbot/infrastructure/logger"
	"nosbot/infrastructure/persistence"
	"nosbot/infrastructure/realtime"
	httpHandler "nosbot/interfaces/http"
	"nosbot/server"
	"nosbot/usecase"

	"github.com/gin-gonic/gin"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")
	configuration.LoadConfig()
	app := configuration.C.App

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		os.Exit(1)
	}
	if err := persistence.EnsureCatalogSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring catalog schema")
		os.Exit(1)
	}
	logger.GetLogger().Info("Database connected.")

	redisClient, err := cache.NewRedisClient(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - rate limiting disabled")
		redisClient = nil
	}

	channelRepository := persistence.NewChannelRepository(psqlDb)
	videoRepository := persistence.NewVideoRepository(psqlDb)
	playlistRepository := persistence.NewPlaylistRepository(psqlDb)
	quotaRepository := persistence.NewQuotaLogRepository(psqlDb)

	videoSource, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:       configuration.C.YouTube.APIKey,
		ClientID:     configuration.C.YouTube.ClientID,
		ClientSecret: configuration.C.YouTube.ClientSecret,
		RedirectURL:  configuration.C.YouTube.RedirectURI,
		AccessToken:  configuration.C.YouTube.AccessToken,
		RefreshToken: configuration.C.YouTube.RefreshToken,
	}, quotaRepository)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("YouTube API not configured - lookup and indexing will be limited to stored data")
		videoSource = nil
	}

	completion, err := geminiclient.NewGeminiClient(&geminiclient.Config{
		APIKey:   configuration.C.Gemini.APIKey,
		Model:    configuration.C.Gemini.Model,
		Endpoint: configuration.C.Gemini.Endpoint,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Gemini API not configured - topic selection falls back to keyword scoring")
		completion = nil
	}

	var rateLimiter cache.IRateLimiter
	if redisClient != nil {
		rateLimiter = cache.NewRateLimiter(redisClient,
			configuration.C.RateLimit.FreeDailyCredits,
			configuration.C.RateLimit.ProDailyCredits)
	}

	indexHub := realtime.NewIndexHub()
	broadcaster := func(channelID string, status model.IndexStatus, indexed, total int) {
		indexHub.BroadcastProgress(realtime.IndexProgressEvent{
			Type:              "index_progress",
			ChannelID:         channelID,
			Status:            string(status),
			IndexedVideoCount: indexed,
			TotalVideoCount:   total,
		})
	}

	indexerUsecase := usecase.NewIndexerUsecase(channelRepository, videoRepository, videoSource, nil).
		WithBroadcaster(broadcaster)

	// Dispatch backend selection. Without a backend, index jobs run inline
	// in this process.
	var dispatcher dispatch.IDispatcher
	switch configuration.C.Dispatch.Backend {
	case "pubsub":
		pubSubClient, err := dispatch.NewPubSubClient(ctx, configuration.C.Dispatch.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - indexing runs inline")
			break
		}
		psDispatcher := dispatch.NewPubSubDispatcher(pubSubClient, configuration.C.Dispatch.Topic, configuration.C.Dispatch.Subscription)
		dispatcher = psDispatcher
		g.Go(func() error {
			return psDispatcher.ReceiveIndexJobs(ctx, func(jobCtx context.Context, job dispatch.IndexJob) error {
				return indexerUsecase.IndexChannelVideos(jobCtx, job.ChannelID)
			})
		})
	case "servicebus":
		sbClient, err := dispatch.NewServiceBusClient(configuration.C.Dispatch.Namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Service Bus not available - indexing runs inline")
			break
		}
		sbDispatcher := dispatch.NewServiceBusDispatcher(sbClient, configuration.C.Dispatch.Queue)
		dispatcher = sbDispatcher
		g.Go(func() error {
			return sbDispatcher.ReceiveIndexJobs(ctx, func(jobCtx context.Context, job dispatch.IndexJob) error {
				return indexerUsecase.IndexChannelVideos(jobCtx, job.ChannelID)
			})
		})
	default:
		logger.GetLogger().Info("No dispatch backend configured - indexing runs inline")
	}
	if dispatcher != nil {
		indexerUsecase = usecase.NewIndexerUsecase(channelRepository, videoRepository, videoSource, dispatcher).
			WithBroadcaster(broadcaster)
	}

	channelUsecase := usecase.NewChannelUsecase(channelRepository, videoSource)
	playlistUsecase := usecase.NewPlaylistUsecase(channelRepository, videoRepository, playlistRepository,
		usecase.NewTopicSelector(completion), rateLimiter)

	channelHandler := httpHandler.NewChannelHandler(channelUsecase, indexerUsecase, quotaRepository)
	playlistHandler := httpHandler.NewPlaylistHandler(playlistUsecase)

	router := server.InitiateRouter(channelHandler, playlistHandler, app.SecretKey)

	// SSE endpoint for live indexing progress
	router.GET("/api/channels/:channelId/index/stream", func(c *gin.Context) { indexHub.Serve(c) })

	port := app.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}
