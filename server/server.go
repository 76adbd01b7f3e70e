// Package server exposes the REST surface: customer storefront routes and
// the admin back office, both answering the {success, message?, data?}
// envelope.
package server

import (
	"fmt"

	"github.com/example/storehub/pkg/auth"
	"github.com/example/storehub/pkg/config"
	"github.com/example/storehub/pkg/orders"
	"github.com/example/storehub/pkg/rbac"
	"github.com/example/storehub/pkg/repository"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	db       *gorm.DB
	redis    *repository.RedisRepository
	orders   *orders.Service
	resolver *rbac.Resolver
	// rbacCache is non-nil only when the permission cache is enabled; role
	// and permission writes flush it.
	rbacCache *rbac.CachedStore
	tokens    *auth.TokenManager
	refresh   *auth.RefreshStore
}

func New(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redis *repository.RedisRepository,
	orderSvc *orders.Service,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	gormStore := rbac.NewGormStore(db)
	var resolver *rbac.Resolver
	var cache *rbac.CachedStore
	if cfg.RBAC.CacheTTL > 0 {
		cache = rbac.NewCachedStore(gormStore, redis, cfg.RBAC.CacheTTL)
		resolver = rbac.NewResolver(cache)
	} else {
		resolver = rbac.NewResolver(gormStore)
	}

	return &Server{
		config:    cfg,
		logger:    logger,
		router:    router,
		db:        db,
		redis:     redis,
		orders:    orderSvc,
		resolver:  resolver,
		rbacCache: cache,
		tokens:    auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL),
		refresh:   auth.NewRefreshStore(redis, cfg.JWT.RefreshTTL),
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Customer storefront
	customer := s.router.Group("/customer")
	{
		authGroup := customer.Group("/auth")
		{
			authGroup.POST("/register", s.register)
			authGroup.POST("/login", s.login)
			authGroup.POST("/oauth", s.oauthLogin)
			authGroup.GET("/refresh", s.refreshTokens)
		}

		addressGroup := customer.Group("/addresses", s.requireAuth(), s.requireCustomer())
		{
			addressGroup.POST("", s.createAddress)
			addressGroup.GET("", s.listAddresses)
		}

		orderGroup := customer.Group("/orders", s.requireAuth(), s.requireCustomer())
		{
			orderGroup.POST("", s.createOrder)
			orderGroup.GET("", s.listCustomerOrders)
			orderGroup.GET("/:id", s.getCustomerOrder)
			orderGroup.POST("/:id/cancel", s.cancelOrder)
			orderGroup.POST("/:id/return", s.returnOrder)
		}
	}

	// Back-office login is the only unauthenticated admin route.
	s.router.POST("/auth/login", s.adminLogin)

	// Admin back office
	admin := s.router.Group("/", s.requireAuth())
	{
		adminOrders := admin.Group("/orders")
		{
			adminOrders.GET("", s.requirePermission("orders", "view"), s.listOrders)
			adminOrders.GET("/analytics", s.requirePermission("orders", "view"), s.orderAnalytics)
			adminOrders.GET("/export", s.requirePermission("orders", "view"), s.exportOrders)
			adminOrders.POST("/bulk-update", s.requirePermission("orders", "edit"), s.bulkUpdateOrders)
			adminOrders.GET("/:id", s.requirePermission("orders", "view"), s.getOrder)
			adminOrders.GET("/:id/audit", s.requirePermission("orders", "view"), s.orderAudit)
			adminOrders.PUT("/:id", s.requirePermission("orders", "edit"), s.updateOrder)
			adminOrders.DELETE("/:id", s.requirePermission("orders", "delete"), s.deleteOrder)
		}

		s.registerResourceRoutes(admin)
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("Server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// flushRBACCache drops cached role snapshots after any role or permission
// write so the change takes effect on the next request even with caching on.
func (s *Server) flushRBACCache(c *gin.Context) {
	if s.rbacCache == nil {
		return
	}
	if err := s.rbacCache.FlushAll(c.Request.Context()); err != nil {
		s.logger.Warn("Failed to flush role-permission cache", zap.Error(err))
	}
}
