package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"social-chat-service/internal/auth"
	"social-chat-service/internal/config"
	"social-chat-service/internal/db"
	"social-chat-service/internal/notify"
	"social-chat-service/internal/observability"
	"social-chat-service/internal/rabbitmq"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/storage"
	"social-chat-service/internal/telemetry"
	"social-chat-service/internal/ws"
)

const serviceName = "social-chat-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdownTracer(ctx)

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	uploads, err := storage.New(storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("failed to init object storage: %v", err)
	}
	if s, ok := uploads.(*storage.MinioStorage); ok {
		if err := s.EnsureBucket(ctx); err != nil {
			log.Fatalf("failed to ensure bucket: %v", err)
		}
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))
	audit := telemetry.NewAuditEmitter(publisher, "audit_log.chat", serviceName, cfg.Environment)

	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)

	roomRouter := ws.NewRouter()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			DialTimeout: 5 * time.Second,
		})
	}
	backplane := ws.NewBackplane(roomRouter, rdb, cfg.RedisChannel)
	backplane.Start(ctx)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	coordinator := ws.NewCoordinator(roomRouter, backplane, chatRepo, messageRepo, userRepo, uploads, audit)
	wsHandler := ws.NewHandler(roomRouter, coordinator, verifier, audit)

	dispatcher := notify.NewDispatcher(backplane)
	notifyHandler := notify.NewHandler(dispatcher)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(serviceName))
	engine.Use(observability.HTTPMetricsMiddleware())

	engine.GET("/ws", wsHandler.Handle)
	engine.POST("/internal/notifications", notifyHandler.Dispatch)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.DebugRoutes {
		registerDebugRoutes(engine)
	}

	log.Printf("chat service listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
