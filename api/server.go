package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fleetscale/autoscaler-core/api/handlers"
	"github.com/fleetscale/autoscaler-core/api/middleware"
	"github.com/fleetscale/autoscaler-core/api/websocket"
	"github.com/fleetscale/autoscaler-core/docs"
	"github.com/fleetscale/autoscaler-core/internal/auth"
	"github.com/fleetscale/autoscaler-core/internal/metrics"
	"github.com/fleetscale/autoscaler-core/pkg/config"
	"github.com/fleetscale/autoscaler-core/pkg/database"
	"github.com/fleetscale/autoscaler-core/pkg/database/queries"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server is the operator-facing HTTP surface around a controller.Manager:
// login, cluster introspection, audit read-back, live event streaming and
// process metrics. Grounded on the teacher's api/server.go, generalized
// from its per-user cluster-ownership model to the config-driven clusters
// this domain manages.
type Server struct {
	router         *gin.Engine
	httpServer     *http.Server
	config         config.APIConfig
	db             *database.DB
	authService    *auth.Service
	wsHub          *websocket.Hub
	wsBridge       *websocket.EventBridge
	clusterManager handlers.ClusterManager
}

func NewServer(cfg config.APIConfig, wsCfg config.WebSocketConfig, db *database.DB, clusterManager handlers.ClusterManager) *Server {
	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	issuer := cfg.JWTIssuer
	duration := cfg.JWTDuration
	if duration == 0 {
		duration = 24 * time.Hour
	}
	var authService *auth.Service
	if issuer != "" {
		authService = auth.NewServiceWithIssuer(cfg.JWTSecret, duration, issuer)
	} else {
		authService = auth.NewService(cfg.JWTSecret, duration)
	}

	wsHub := websocket.NewHub(wsCfg)

	s := &Server{
		router:         router,
		config:         cfg,
		db:             db,
		authService:    authService,
		wsHub:          wsHub,
		clusterManager: clusterManager,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	if clusterManager != nil {
		eventsChan := clusterManager.SubscribeAllEvents()
		s.wsBridge = websocket.NewEventBridge(wsHub, eventsChan)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(corsConfigFrom(s.config.CORS)))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.SecurityHeaders())

	rateLimit := s.config.RateLimit
	if rateLimit == 0 {
		rateLimit = 120
	}
	rateLimiter := middleware.NewRateLimiter(rateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func corsConfigFrom(cfg config.CORSConfig) middleware.CORSConfig {
	if len(cfg.AllowedOrigins) == 0 {
		return middleware.DefaultCORSConfig()
	}
	return middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
	}
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.db)
	clusterHandler := handlers.NewClusterHandler(s.clusterManager)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", s.config.Port)
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if s.db != nil {
		userRepo := queries.NewUserRepository(s.db.DB)
		eventRepo := queries.NewEventRepository(s.db.DB)
		authHandler := handlers.NewAuthHandler(userRepo, s.authService, s.config)
		eventsHandler := handlers.NewEventsHandler(eventRepo)

		s.router.POST("/auth/login", authHandler.Login)

		protected := s.router.Group("/")
		protected.Use(middleware.JWTAuth(s.authService))
		{
			protected.GET("/clusters", clusterHandler.List)
			protected.GET("/clusters/:id/ruleset", clusterHandler.GetRuleSet)
			protected.POST("/clusters/:id/stop", clusterHandler.Stop)
			protected.GET("/clusters/:id/decisions", eventsHandler.GetDecisions)
			protected.GET("/clusters/:id/scale-requests", eventsHandler.GetScaleRequests)
		}
		return
	}

	// No audit database configured: expose introspection only, without auth
	// routes since there is no user store to authenticate against.
	s.router.GET("/clusters", clusterHandler.List)
	s.router.GET("/clusters/:id/ruleset", clusterHandler.GetRuleSet)
	s.router.POST("/clusters/:id/stop", clusterHandler.Stop)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	readTimeout := s.config.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := s.config.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}
	idleTimeout := s.config.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	metrics.Get()

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
