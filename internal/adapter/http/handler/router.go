package handler

import (
	"crowdfund-ledger/internal/adapter/http/middleware"
	"crowdfund-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Engine         ports.SettlementEngine
	Settings       ports.SettingsRepository
	SigSvc         ports.SignatureService
	Recorder       ports.EventRecorder
	ReconSvc       ports.ReconciliationService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Gateway webhook ingress
	webhookHandler := NewWebhookHandler(deps.Engine, deps.Settings, deps.SigSvc, deps.Recorder, deps.Logger)
	r.POST("/v1/webhooks/paystack", webhookHandler.HandleGatewayEvent)

	// Ledger reads + reconciliation
	ledgerHandler := NewLedgerHandler(deps.ReconSvc)
	v1 := r.Group("/api/v1")
	holders := v1.Group("/holders/:kind/:id")
	{
		holders.GET("/ledger", ledgerHandler.ListEntries)
		holders.GET("/reconciliation", ledgerHandler.CheckHolder)
	}

	return r
}
