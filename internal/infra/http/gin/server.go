package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staymarket/internal/infra/config"
	"staymarket/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Me             MeHTTP
	Property       PropertyHTTP
	HostProperty   HostPropertyHTTP
	Booking        BookingHTTP
	HostBooking    HostBookingHTTP
	Earnings       EarningsHTTP
	Chat           ChatHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
		api.POST("/auth/become-host", h.Auth.BecomeHost)
	}
	if h.Property != nil {
		api.GET("/properties", h.Property.Search)
		api.GET("/properties/:id", h.Property.Get)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/properties/:id/quote", h.Booking.Quote)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
	}
	if h.HostProperty != nil {
		hostProps := api.Group("/host/properties")
		hostProps.GET("", h.HostProperty.List)
		hostProps.POST("", h.HostProperty.Create)
		hostProps.PUT("/:id", h.HostProperty.Update)
		hostProps.POST("/:id/publish", h.HostProperty.Publish)
		hostProps.POST("/:id/unpublish", h.HostProperty.Unpublish)
	}
	if h.HostBooking != nil {
		hostBookings := api.Group("/host/bookings")
		hostBookings.GET("", h.HostBooking.List)
		hostBookings.POST("", h.HostBooking.Create)
		hostBookings.PATCH("/:id/status", h.HostBooking.SetStatus)
		hostBookings.DELETE("/:id", h.HostBooking.Delete)
	}
	if h.Earnings != nil {
		hostEarnings := api.Group("/host/earnings")
		hostEarnings.GET("", h.Earnings.Earnings)
		hostEarnings.GET("/payouts", h.Earnings.ListPayouts)
		hostEarnings.POST("/payouts", h.Earnings.RequestPayout)
	}
	if h.Chat != nil {
		api.POST("/conversations", h.Chat.StartConversation)
		api.GET("/conversations", h.Chat.ListConversations)
		api.GET("/conversations/:id/messages", h.Chat.ListMessages)
		api.POST("/conversations/:id/messages", h.Chat.SendMessage)
	}
	if h.Admin != nil {
		api.POST("/admin/properties/:id/approve", h.Admin.ApproveProperty)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
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
