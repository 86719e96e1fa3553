package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"mathematico-payments/internal/config"
	"mathematico-payments/internal/handler"
	custommw "mathematico-payments/internal/middleware"
	"mathematico-payments/internal/service"
)

type Server struct {
	echo              *echo.Echo
	paymentHandler    *handler.PaymentHandler
	webhookHandler    *handler.WebhookHandler
	enrollmentHandler *handler.EnrollmentHandler
	jwtSecret         string
}

func NewServer(cfg *config.Config, paymentService service.PaymentService, enrollmentService service.EnrollmentService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:              e,
		paymentHandler:    handler.NewPaymentHandler(paymentService),
		webhookHandler:    handler.NewWebhookHandler(paymentService),
		enrollmentHandler: handler.NewEnrollmentHandler(enrollmentService),
		jwtSecret:         cfg.Auth.JWTSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authed := api.Group("", custommw.JWTAuth(s.jwtSecret))

	payments := authed.Group("/payments")
	payments.POST("/create-order", s.paymentHandler.CreateOrder)
	payments.POST("/verify", s.paymentHandler.VerifyPayment)
	payments.GET("/:orderID", s.paymentHandler.GetPaymentStatus)

	authed.GET("/enrollments", s.enrollmentHandler.GetEnrollments)

	// -------- provider callbacks (no auth, signature-verified) --------
	webhook := s.echo.Group("/webhook")
	webhook.POST("/razorpay", s.webhookHandler.HandleRazorpayWebhook)
	webhook.GET("/razorpay/health", s.webhookHandler.Health)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
