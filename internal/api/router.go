package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/everwith_go_server/config"
	"github.com/qs3c/everwith_go_server/internal/api/handler"
	"github.com/qs3c/everwith_go_server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	entitlementHandler  *handler.EntitlementHandler
	usageHandler        *handler.UsageHandler
	shareHandler        *handler.ShareHandler
	subscriptionHandler *handler.SubscriptionHandler
	processHandler      *handler.ProcessHandler
	feedbackHandler     *handler.FeedbackHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	entitlementHandler *handler.EntitlementHandler,
	usageHandler *handler.UsageHandler,
	shareHandler *handler.ShareHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	processHandler *handler.ProcessHandler,
	feedbackHandler *handler.FeedbackHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		entitlementHandler:  entitlementHandler,
		usageHandler:        usageHandler,
		shareHandler:        shareHandler,
		subscriptionHandler: subscriptionHandler,
		processHandler:      processHandler,
		feedbackHandler:     feedbackHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/google", r.authHandler.GoogleAuth)
			auth.GET("/google/callback", r.authHandler.GoogleCallback)
		}

		// 公开接口 - 定价与消耗表
		api.GET("/credits/costs", r.entitlementHandler.GetCosts)
		api.GET("/subscription/pricing", r.subscriptionHandler.GetPricing)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
			}

			// 积分与准入
			credits := authenticated.Group("/credits")
			{
				credits.POST("/check-access", r.entitlementHandler.CheckAccess)
				credits.POST("/use", r.entitlementHandler.Consume)
				credits.GET("/summary", r.entitlementHandler.GetSummary)
			}

			// 用量状态
			authenticated.GET("/usage/status", r.usageHandler.GetStatus)

			// 分享奖励
			share := authenticated.Group("/share")
			{
				share.POST("/verify", r.shareHandler.Verify)
				share.GET("/stats", r.shareHandler.GetStats)
			}

			// 支付与订阅
			authenticated.POST("/purchases/notify", r.subscriptionHandler.NotifyPurchase)
			subscription := authenticated.Group("/subscription")
			{
				subscription.POST("/subscribe", r.subscriptionHandler.Subscribe)
				subscription.POST("/cancel", r.subscriptionHandler.Cancel)
				subscription.GET("/status", r.subscriptionHandler.GetStatus)
			}

			// 图片处理
			authenticated.POST("/process", r.processHandler.Submit)
			jobs := authenticated.Group("/jobs")
			{
				jobs.GET("", r.processHandler.ListJobs)
				jobs.GET("/:id", r.processHandler.GetJob)
			}

			// 反馈与支持
			feedback := authenticated.Group("/feedback")
			{
				feedback.POST("/submit", r.feedbackHandler.Submit)
				feedback.GET("", r.feedbackHandler.List)
			}
		}
	}

	return engine
}
