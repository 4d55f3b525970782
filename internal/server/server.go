package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/auth"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/clock"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/config"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/deduction"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/membership"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/notifier"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/plan"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/user"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	db         *sqlx.DB
	config     *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, gateway *notifier.Service, scheduler *deduction.Scheduler, clk clock.Clock) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userRepo := user.NewRepository(db)
	planRepo := plan.NewRepository(db)
	scheduleRepo := schedule.NewRepository(db)
	membershipRepo := membership.NewRepository(db)

	userHandler := user.NewHandler(user.NewService(userRepo, cfg.JWTSecret))
	planHandler := plan.NewHandler(plan.NewService(planRepo))
	scheduleHandler := schedule.NewHandler(schedule.NewService(scheduleRepo, clk))
	membershipHandler := membership.NewHandler(
		membership.NewService(membershipRepo, planRepo, scheduleRepo, userRepo, gateway, clk),
	)
	deductionHandler := deduction.NewHandler(scheduler)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/schedule/open-now", scheduleHandler.OpenNow)
	SetupSwagger(router)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/plans", planHandler.ListPlans)
		protected.GET("/plans/:planID", planHandler.GetPlan)
		protected.POST("/plans/:planID/schedule/validate", membershipHandler.ValidateSchedule)
		protected.GET("/schedule", scheduleHandler.ListDays)
		protected.GET("/schedule/:day/slots", scheduleHandler.GetDay)
		protected.POST("/memberships", membershipHandler.CreateMembership)
		protected.GET("/memberships/mine", membershipHandler.ListMyMemberships)
		protected.POST("/memberships/:membershipID/schedule", membershipHandler.ReserveSlots)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/plans", planHandler.CreatePlan)
		admin.PATCH("/plans/:planID", planHandler.UpdatePlan)

		admin.POST("/memberships/:membershipID/activate", membershipHandler.Activate)
		admin.POST("/memberships/:membershipID/suspend", membershipHandler.Suspend)
		admin.POST("/memberships/:membershipID/reinstate", membershipHandler.Reinstate)
		admin.POST("/memberships/:membershipID/cancel", membershipHandler.Cancel)

		admin.POST("/schedule/:day/slots", scheduleHandler.AddTimeSlot)
		admin.DELETE("/schedule/:day/slots/:slotID", scheduleHandler.RemoveTimeSlot)
		admin.PATCH("/schedule/:day/slots/:slotID", scheduleHandler.UpdateTimeSlot)
		admin.POST("/schedule/:day/slots/:slotID/duplicate", scheduleHandler.DuplicateTimeSlot)
		admin.POST("/schedule/:day/slots/:slotID/walk-in", scheduleHandler.RecordWalkIn)
		admin.DELETE("/schedule/:day/slots/:slotID/walk-in", scheduleHandler.RemoveWalkIn)
		admin.POST("/schedule/:day/toggle", scheduleHandler.ToggleDayOpen)
		admin.GET("/schedule/metrics", scheduleHandler.GetCapacityMetrics)

		admin.POST("/deduction/run", deductionHandler.RunNow)
		admin.GET("/notifications/queue", QueueStatus(gateway))
	}

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
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
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
