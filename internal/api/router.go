package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/qs3c/mini_tweeter_server/config"
	"github.com/qs3c/mini_tweeter_server/internal/api/handler"
	"github.com/qs3c/mini_tweeter_server/internal/api/middleware"
	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/metrics"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/validate"
	"github.com/qs3c/mini_tweeter_server/internal/service"
)

type Router struct {
	authHandler        *handler.AuthHandler
	userHandler        *handler.UserHandler
	quotaHandler       *handler.QuotaHandler
	tweetHandler       *handler.TweetHandler
	commentHandler     *handler.CommentHandler
	interactionHandler *handler.InteractionHandler
	paymentHandler     *handler.PaymentHandler
	healthHandler      *handler.HealthHandler
	quotaService       *service.QuotaService
	metrics            *metrics.Metrics
	logger             zerolog.Logger
	cfg                *config.Config
}

// Handlers 路由依赖的全部 handler
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Quota       *handler.QuotaHandler
	Tweet       *handler.TweetHandler
	Comment     *handler.CommentHandler
	Interaction *handler.InteractionHandler
	Payment     *handler.PaymentHandler
	Health      *handler.HealthHandler
}

func NewRouter(
	h Handlers,
	quotaService *service.QuotaService,
	m *metrics.Metrics,
	logger zerolog.Logger,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:        h.Auth,
		userHandler:        h.User,
		quotaHandler:       h.Quota,
		tweetHandler:       h.Tweet,
		commentHandler:     h.Comment,
		interactionHandler: h.Interaction,
		paymentHandler:     h.Payment,
		healthHandler:      h.Health,
		quotaService:       quotaService,
		metrics:            m,
		logger:             logger,
		cfg:                cfg,
	}
}

func (r *Router) Setup() (*gin.Engine, error) {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validate.Register(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	jwtOpts := service.JWTOptions(r.cfg.JWT)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(r.logger))
	engine.Use(middleware.Metrics(r.metrics))
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", r.healthHandler.Healthz)
	if r.metrics != nil {
		engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	api := engine.Group("/api")
	{
		// 公开接口 - 认证
		user := api.Group("/user")
		{
			user.POST("/register", r.authHandler.Register)
			user.POST("/login", r.authHandler.Login)
			user.POST("/google-auth", r.authHandler.GoogleAuth)
		}

		userAuth := api.Group("/user")
		userAuth.Use(middleware.Auth(jwtOpts))
		{
			userAuth.GET("/user-details", r.userHandler.GetDetails)
			userAuth.PUT("/update-user-details/:id", r.userHandler.UpdateDetails)
			userAuth.PUT("/update-user-password/:id", r.userHandler.UpdatePassword)
			userAuth.DELETE("/delete-user/:id", r.userHandler.Delete)
			userAuth.GET("/quota", r.quotaHandler.GetQuota)
		}

		// 支付渠道回调凭签名鉴权
		api.POST("/payment/webhook", r.paymentHandler.Webhook)

		// 公开读取（可选认证，登录后附带 liked/retweeted）
		public := api.Group("")
		public.Use(middleware.OptionalAuth(jwtOpts))
		{
			public.GET("/tweet", r.tweetHandler.List)
			public.GET("/tweet/:id", r.tweetHandler.Get)
			public.GET("/tweet/:id/comments", r.tweetHandler.ListComments)
			public.GET("/comment", r.commentHandler.List)
			public.GET("/comment/:id", r.commentHandler.Get)
		}

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(jwtOpts))
		{
			tweet := authenticated.Group("/tweet")
			{
				tweet.POST("", middleware.QuotaCheck(r.quotaService, r.metrics), r.tweetHandler.Create)
				tweet.PUT("/:id", r.tweetHandler.Update)
				tweet.DELETE("/:id", r.tweetHandler.Delete)
				r.interactionRoutes(tweet, model.TargetTweet)
			}

			comment := authenticated.Group("/comment")
			{
				comment.POST("", r.commentHandler.Create)
				comment.PUT("/:id", r.commentHandler.Update)
				comment.DELETE("/:id", r.commentHandler.Delete)
				r.interactionRoutes(comment, model.TargetComment)
			}

			payment := authenticated.Group("/payment")
			{
				payment.POST("", r.paymentHandler.Create)
				payment.GET("", r.paymentHandler.List)
				payment.GET("/:id", r.paymentHandler.Get)
				payment.PUT("/:id/status", r.paymentHandler.UpdateStatus)
			}
		}
	}

	return engine, nil
}

func (r *Router) interactionRoutes(group *gin.RouterGroup, targetType model.TargetType) {
	group.PUT("/:id/like", r.interactionHandler.Like(targetType))
	group.PUT("/:id/unlike", r.interactionHandler.Unlike(targetType))
	group.PUT("/:id/retweet", r.interactionHandler.Retweet(targetType))
	group.PUT("/:id/unretweet", r.interactionHandler.Unretweet(targetType))
}
