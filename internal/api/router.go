package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/accounts"
	iauth "github.com/nursultanq/gymapp/internal/auth"
	"github.com/nursultanq/gymapp/internal/handlers"
	"github.com/nursultanq/gymapp/internal/middleware"
	"github.com/nursultanq/gymapp/internal/services"
	"github.com/nursultanq/gymapp/internal/stats"
)

// Options carries router settings that are not service dependencies.
type Options struct {
	// MetricsEnabled exposes the Prometheus scrape endpoint.
	MetricsEnabled bool
	// MetricsEndpoint overrides the default /metrics path.
	MetricsEndpoint string
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
// Registration and login live under /api/public; everything else requires a
// bearer token. The stats client is optional.
func NewRouter(db *gorm.DB, guard *iauth.Guard, tokens *iauth.TokenService, statsClient *stats.Client, opts Options) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if guard == nil {
		return nil, fmt.Errorf("credential guard must be provided")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service must be provided")
	}

	store, err := accounts.NewStore(db)
	if err != nil {
		return nil, err
	}
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}

	authHandler, err := handlers.NewAuthHandler(guard, tokens, audit)
	if err != nil {
		return nil, err
	}
	traineeHandler, err := handlers.NewTraineeHandler(db, store)
	if err != nil {
		return nil, err
	}
	trainerHandler, err := handlers.NewTrainerHandler(db, store, statsClient)
	if err != nil {
		return nil, err
	}
	trainingHandler, err := handlers.NewTrainingHandler(db, statsClient)
	if err != nil {
		return nil, err
	}
	trainingTypeHandler, err := handlers.NewTrainingTypeHandler(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Correlation())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.NoRoute(middleware.NotFoundHandler)

	// Public surface
	r.GET("/health", handlers.Health(db))
	if opts.MetricsEnabled {
		endpoint := opts.MetricsEndpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	public := r.Group("/api/public")
	{
		public.POST("/trainees", traineeHandler.Register)
		public.POST("/trainers", trainerHandler.Register)
		public.POST("/login", authHandler.Login)
		public.POST("/token/validate", authHandler.ValidateToken)
	}

	// Protected surface
	api := r.Group("/api")
	api.Use(middleware.Auth(tokens))

	api.POST("/user/logout", authHandler.Logout)
	api.PUT("/user/password", authHandler.ChangePassword)
	api.GET("/user/audit", authHandler.AuditTrail)

	trainees := api.Group("/trainees")
	{
		trainees.GET("/:username", traineeHandler.Get)
		trainees.PUT("/:username", traineeHandler.Update)
		trainees.DELETE("/:username", traineeHandler.Delete)
		trainees.PATCH("/:username/activation", traineeHandler.SetActivation)
		trainees.PUT("/:username/trainers", traineeHandler.UpdateTrainers)
		trainees.GET("/:username/unassigned-trainers", traineeHandler.UnassignedTrainers)
		trainees.GET("/:username/trainings", traineeHandler.Trainings)
	}

	trainers := api.Group("/trainers")
	{
		trainers.GET("/:username", trainerHandler.Get)
		trainers.PUT("/:username", trainerHandler.Update)
		trainers.PATCH("/:username/activation", trainerHandler.SetActivation)
		trainers.GET("/:username/trainings", trainerHandler.Trainings)
		trainers.GET("/:username/stats/monthly", trainerHandler.MonthlyStats)
		trainers.GET("/:username/stats", trainerHandler.FullStats)
	}

	api.POST("/trainings", trainingHandler.Create)
	api.DELETE("/trainings/:id", trainingHandler.Delete)
	api.GET("/training-types", trainingTypeHandler.List)

	return r, nil
}
