package main

import (
	"context"
	"fmt"
	"log"

	"github.com/qs3c/everwith_go_server/config"
	"github.com/qs3c/everwith_go_server/internal/api"
	"github.com/qs3c/everwith_go_server/internal/api/handler"
	"github.com/qs3c/everwith_go_server/internal/database"
	"github.com/qs3c/everwith_go_server/internal/pkg/cron"
	"github.com/qs3c/everwith_go_server/internal/pkg/pubsub"
	"github.com/qs3c/everwith_go_server/internal/pkg/queue"
	"github.com/qs3c/everwith_go_server/internal/pkg/ws"
	"github.com/qs3c/everwith_go_server/internal/repository"
	"github.com/qs3c/everwith_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 Queue
	jobQueue := queue.NewQueue(rdb, cfg.Queue.ProcessQueue)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()
	log.Println("WebSocket hub started")

	// 订阅任务进度，转发到 WebSocket
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.ProgressMessage) {
			if err := wsHub.SendJobUpdate(msg.UserID, msg); err != nil {
				log.Printf("Failed to push job update to user %d: %v", msg.UserID, err)
			}
		})
		if err != nil && err != context.Canceled {
			log.Printf("Progress subscriber stopped: %v", err)
		}
	}()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	shareRepo := repository.NewShareRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	jobRepo := repository.NewJobRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, creditRepo, cfg)
	entitlementService := service.NewEntitlementService(userRepo, creditRepo, usageRepo, cfg)
	fairUseService := service.NewFairUseService(usageRepo, cfg)
	shareService := service.NewShareService(shareRepo, userRepo, creditRepo, cfg)
	billingService := service.NewBillingService(db, cfg)
	processingService := service.NewProcessingService(entitlementService, fairUseService, jobRepo, jobQueue)
	feedbackService := service.NewFeedbackService(feedbackRepo)

	// 初始化定时任务（订阅到期 + 账本对账）
	cronService := cron.NewService(userRepo, subRepo, creditRepo)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	entitlementHandler := handler.NewEntitlementHandler(entitlementService)
	usageHandler := handler.NewUsageHandler(fairUseService)
	shareHandler := handler.NewShareHandler(shareService)
	subscriptionHandler := handler.NewSubscriptionHandler(billingService)
	processHandler := handler.NewProcessHandler(processingService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		entitlementHandler,
		usageHandler,
		shareHandler,
		subscriptionHandler,
		processHandler,
		feedbackHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
