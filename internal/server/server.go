package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/ldbrian/toughlove-ai-sub000/internal/auth"
	"github.com/ldbrian/toughlove-ai-sub000/internal/catalog"
	"github.com/ldbrian/toughlove-ai-sub000/internal/config"
	"github.com/ldbrian/toughlove-ai-sub000/internal/persona"
	"github.com/ldbrian/toughlove-ai-sub000/internal/purchase"
	"github.com/ldbrian/toughlove-ai-sub000/internal/receipt"
	"github.com/ldbrian/toughlove-ai-sub000/internal/settlement"
	"github.com/ldbrian/toughlove-ai-sub000/internal/signature"
	"github.com/ldbrian/toughlove-ai-sub000/internal/wallet"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, items *catalog.Catalog, receipts *receipt.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	verifier := signature.NewVerifier(cfg.WebhookSecret)

	walletRepo := wallet.NewRepository(db)
	orderRepo := settlement.NewRepository(db)
	purchaseRepo := purchase.NewRepository(db)
	personaRepo := persona.NewRepository(db)

	settlementService := settlement.NewService(db, orderRepo, walletRepo, receipts)
	purchaseService := purchase.NewService(db, items, walletRepo, purchaseRepo)
	personaService := persona.NewService(db, items, personaRepo)

	settlementHandler := settlement.NewHandler(settlementService, verifier, cfg.WebhookSignatureHeader)
	purchaseHandler := purchase.NewHandler(purchaseService)
	personaHandler := persona.NewHandler(personaService)
	walletHandler := wallet.NewHandler(db)
	catalogHandler := catalog.NewHandler(items)

	// The webhook authenticates with its own HMAC, never with user tokens,
	// and carries a stricter rate limit than the client API.
	router.POST("/webhook/payment", RateLimitMiddleware(10, 20), settlementHandler.PaymentWebhook)

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(50, 100), auth.Middleware(cfg.JWTSecret))
	{
		api.GET("/catalog", catalogHandler.ListItems)
		api.POST("/purchase", purchaseHandler.Buy)
		api.GET("/purchases/:userId", purchaseHandler.History)
		api.POST("/items/use", personaHandler.UseItem)
		api.GET("/personas/:userId/:persona", personaHandler.GetState)
		api.GET("/wallet/:userId/balance", walletHandler.GetBalance)
		api.GET("/wallet/:userId/entries", walletHandler.ListEntries)
		api.POST("/orders", settlementHandler.CreateOrder)
		api.GET("/orders/:orderId", settlementHandler.GetOrder)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router is exposed for handler-level tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
