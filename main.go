package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"matrimony-service/internal/auth"
	"matrimony-service/internal/config"
	"matrimony-service/internal/db"
	"matrimony-service/internal/grpcserver"
	"matrimony-service/internal/handlers"
	"matrimony-service/internal/logger"
	"matrimony-service/internal/middleware"
	"matrimony-service/internal/notify"
	"matrimony-service/internal/observability"
	"matrimony-service/internal/rabbitmq"
	"matrimony-service/internal/ratelimit"
	"matrimony-service/internal/repositories"
	"matrimony-service/internal/services"
	"matrimony-service/internal/telemetry"
	"matrimony-service/internal/ws"
)

const activityRoutingKey = "activity.interests"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.Environment, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Environment)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer database.Close()

	mongoClient, mongoDB, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := db.DisconnectMongo(mongoClient); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	natsNotifier, closeNATS, err := notify.NewNATSNotifier(cfg.NATSURL, cfg.ServiceName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to nats")
	}
	defer closeNATS()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Info().
		Str("mode", rabbitmq.PublisherMode(publisher)).
		Str("reason", rabbitmq.PublisherNoopReason(publisher)).
		Msg("activity publisher ready")

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, "ratelimit:", cfg.InterestRateLimit, cfg.InterestRateWindow)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, using in-process rate limiter")
		limiter = ratelimit.NewMemoryLimiter(cfg.InterestRateLimit, cfg.InterestRateWindow)
	}

	validator := auth.NewJWTValidator(cfg.JWTSecret)
	hub := ws.NewHub()
	activity := telemetry.NewActivityLog(publisher, activityRoutingKey, cfg.ServiceName, cfg.Environment)

	interestRepo := repositories.NewInterestRepo(database)
	profileRepo := repositories.NewProfileRepo(mongoDB.Collection(db.ProfilesCollection))

	interestService := services.NewInterestService(interestRepo, profileRepo, notify.Multi{natsNotifier, hub}, activity)
	profileService := services.NewProfileService(profileRepo, interestRepo)

	interestHandler := handlers.NewInterestHandler(interestService)
	profileHandler := handlers.NewProfileHandler(profileService)
	notificationsWS := ws.NewNotificationsHandler(hub, validator, cfg.CORSOrigins)

	if cfg.Environment != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(validator)
	createLimit := middleware.RateLimit(limiter, middleware.UserOrIPKey("interests:"))

	router.POST("/interests", authMiddleware, createLimit, interestHandler.CreateInterest)
	router.GET("/interests/received", authMiddleware, interestHandler.ListReceived)
	router.GET("/interests/sent", authMiddleware, interestHandler.ListSent)
	router.GET("/interests/stats", authMiddleware, interestHandler.Stats)
	router.PUT("/interests/:id/respond", authMiddleware, interestHandler.Respond)
	router.PUT("/interests/:id/withdraw", authMiddleware, interestHandler.Withdraw)
	router.PUT("/interests/:id/read", authMiddleware, interestHandler.MarkRead)

	router.GET("/profiles/search", authMiddleware, profileHandler.Search)
	router.GET("/profiles/:user_id", authMiddleware, profileHandler.GetProfile)

	router.GET("/ws/notifications", notificationsWS.Handle)

	handlers.RegisterDebugRoutes(router.Group("", authMiddleware), activity, cfg.DebugRoutes)

	grpcServer := grpcserver.New()
	grpcListener, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("failed to listen for grpc")
	}
	go func() {
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Error().Err(err).Msg("grpc server stopped")
		}
	}()
	grpcServer.SetServing(true)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("grpc_port", cfg.GRPCPort).Msg("matrimony service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	grpcServer.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown failed")
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID", "X-Device-Id")
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	return cfg
}
