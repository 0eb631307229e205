package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
}

type QuoteHTTP interface {
	Quote(c *gin.Context)
}

type WizardHTTP interface {
	Start(c *gin.Context)
	Get(c *gin.Context)
	UpdateDates(c *gin.Context)
	Advance(c *gin.Context)
	Back(c *gin.Context)
	UpdateContact(c *gin.Context)
	Submit(c *gin.Context)
	Refresh(c *gin.Context)
}

type Handlers struct {
	Availability AvailabilityHTTP
	Quote        QuoteHTTP
	Wizard       WizardHTTP
}

// NewRouter builds the gin engine. metrics may be nil.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, metrics *obs.Metrics, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	if metrics != nil {
		router.Use(metrics.GinMiddleware())
	}
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if h.Availability != nil {
		api.GET("/listings/:id/calendar", h.Availability.Calendar)
	}
	if h.Quote != nil {
		api.POST("/listings/:id/quote", h.Quote.Quote)
	}
	if h.Wizard != nil {
		wizards := api.Group("/wizards")
		wizards.POST("", h.Wizard.Start)
		wizards.GET("/:id", h.Wizard.Get)
		wizards.PUT("/:id/dates", h.Wizard.UpdateDates)
		wizards.POST("/:id/advance", h.Wizard.Advance)
		wizards.POST("/:id/back", h.Wizard.Back)
		wizards.PUT("/:id/contact", h.Wizard.UpdateContact)
		wizards.POST("/:id/submit", h.Wizard.Submit)
		wizards.POST("/:id/refresh", h.Wizard.Refresh)
	}
	return router
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, metrics *obs.Metrics, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, metrics, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", obs.RequestIDHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
