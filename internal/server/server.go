package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fitclub/internal/auth"
	"fitclub/internal/clock"
	"fitclub/internal/config"
	"fitclub/internal/dashboard"
	"fitclub/internal/email"
	"fitclub/internal/event"
	"fitclub/internal/membership"
	"fitclub/internal/payment"
	"fitclub/internal/plan"
	"fitclub/internal/profile"
	"fitclub/internal/registration"
	"fitclub/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Deps are the process-wide resources the HTTP layer is built from.
type Deps struct {
	DB      *sqlx.DB
	Config  *config.Config
	Email   *email.Service
	Gateway payment.Gateway
	Clock   *clock.Clock
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(deps Deps) *Server {
	if !deps.Config.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		RateLimitMiddleware(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst, "/payments/webhook", "/health", "/metrics"),
	)

	registerRoutes(router, deps)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + deps.Config.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func registerRoutes(router *gin.Engine, deps Deps) {
	cfg := deps.Config

	userRepo := user.NewRepository(deps.DB)
	profileService := profile.NewService(profile.NewRepository(deps.DB))
	planService := plan.NewService(plan.NewRepository(deps.DB), cfg.Currency)
	userService := user.NewService(userRepo, profileService, cfg.JWTSecret)
	membershipService := membership.NewService(
		membership.NewRepository(deps.DB), planService, profileService, userRepo, deps.Email, deps.Clock,
	)
	eventService := event.NewService(event.NewRepository(deps.DB), profileService, deps.Clock)
	registrationService := registration.NewService(
		registration.NewRepository(deps.DB), profileService, membershipService, eventService, userRepo, deps.Email, deps.Clock,
	)
	paymentService := payment.NewService(payment.NewRepository(deps.DB), deps.Gateway, membershipService, payment.Config{
		Currency:      cfg.Currency,
		PublicBaseURL: cfg.PublicBaseURL,
		Timeout:       cfg.StripeTimeout,
	})
	dashboardService := dashboard.NewService(
		dashboard.NewRepository(deps.DB), profileService, membershipService, eventService, registrationService, deps.Clock,
	)

	userHandler := user.NewHandler(userService)
	profileHandler := profile.NewHandler(profileService)
	planHandler := plan.NewHandler(planService)
	membershipHandler := membership.NewHandler(membershipService)
	eventHandler := event.NewHandler(eventService)
	registrationHandler := registration.NewHandler(registrationService)
	paymentHandler := payment.NewHandler(paymentService)
	dashboardHandler := dashboard.NewHandler(dashboardService)

	router.GET("/health", Health(map[string]Check{
		"database": deps.DB.PingContext,
		"redis":    deps.Email.Ping,
	}))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	public := router.Group("/")
	{
		public.POST("/auth/register", userHandler.Register)
		public.POST("/auth/login", userHandler.Login)
		public.POST("/auth/refresh", userHandler.RefreshToken)
		public.GET("/plans", planHandler.ListPlans)
		public.GET("/plans/:planID", planHandler.GetPlan)
		public.POST("/payments/webhook", paymentHandler.Webhook)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PUT("/me/profile", profileHandler.UpdateMyProfile)
		protected.GET("/trainers", profileHandler.ListTrainers)
		protected.GET("/dashboard", dashboardHandler.Client)

		protected.POST("/memberships/activate/:planID", membershipHandler.Activate)
		protected.GET("/memberships", membershipHandler.ListMine)
		protected.GET("/memberships/active", membershipHandler.Active)

		protected.GET("/events", eventHandler.ListEvents)
		protected.GET("/events/:eventID", eventHandler.GetEvent)
		protected.POST("/events/:eventID/join", registrationHandler.Join)
		protected.POST("/events/:eventID/leave", registrationHandler.Leave)
		protected.GET("/registrations", registrationHandler.ListMine)

		protected.POST("/payments/checkout/:planID", paymentHandler.Checkout)
		protected.GET("/payments/success", paymentHandler.Success)
		protected.GET("/payments/cancel", paymentHandler.Cancel)
		protected.GET("/payments", paymentHandler.List)
	}

	trainer := router.Group("/trainer")
	trainer.Use(authMiddleware, auth.RequireRole(auth.RoleTrainer, auth.RoleAdmin))
	{
		trainer.GET("/dashboard", dashboardHandler.Trainer)
		trainer.POST("/events", eventHandler.CreateEvent)
		trainer.POST("/events/:eventID/cancel", eventHandler.CancelEvent)
		trainer.GET("/events/:eventID/registrations", registrationHandler.ListEventRegistrations)
		trainer.PATCH("/registrations/:registrationID/attendance", registrationHandler.MarkAttendance)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/dashboard", dashboardHandler.Admin)
		admin.POST("/plans", planHandler.CreatePlan)
		admin.PATCH("/plans/:planID/active", planHandler.SetPlanActive)
		admin.POST("/trainers", profileHandler.CreateTrainer)
		admin.PUT("/clients/:userID/trainer", profileHandler.AssignTrainer)
		admin.POST("/memberships/:membershipID/cancel", membershipHandler.Cancel)
		admin.POST("/test-email", TestEmail(deps.Email))
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
