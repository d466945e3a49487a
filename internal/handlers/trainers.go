package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/accounts"
	"github.com/nursultanq/gymapp/internal/middleware"
	"github.com/nursultanq/gymapp/internal/services"
	"github.com/nursultanq/gymapp/internal/stats"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/response"
)

// TrainerHandler serves trainer registration, profiles, and the proxied
// training-stats endpoints.
type TrainerHandler struct {
	trainers  *services.TrainerService
	trainings *services.TrainingService
	audit     *services.AuditService
	stats     *stats.Client
}

type registerTrainerRequest struct {
	FirstName      string `json:"first_name" validate:"required,notblank,max=64"`
	LastName       string `json:"last_name" validate:"required,notblank,max=64"`
	Specialization string `json:"specialization" validate:"required,notblank"`
}

type updateTrainerRequest struct {
	FirstName      string `json:"first_name" validate:"required,notblank,max=64"`
	LastName       string `json:"last_name" validate:"required,notblank,max=64"`
	Specialization string `json:"specialization"`
	IsActive       *bool  `json:"is_active"`
}

// NewTrainerHandler constructs the handler. The stats client may be nil
// when no downstream stats service is configured; the stats endpoints then
// report empty data.
func NewTrainerHandler(db *gorm.DB, store *accounts.Store, statsClient *stats.Client) (*TrainerHandler, error) {
	trainers, err := services.NewTrainerService(db, store)
	if err != nil {
		return nil, err
	}
	trainings, err := services.NewTrainingService(db)
	if err != nil {
		return nil, err
	}
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	return &TrainerHandler{trainers: trainers, trainings: trainings, audit: audit, stats: statsClient}, nil
}

// POST /api/public/trainers
func (h *TrainerHandler) Register(c *gin.Context) {
	var body registerTrainerRequest
	if !bindAndValidate(c, &body) {
		return
	}

	creds, err := h.trainers.Register(c.Request.Context(), services.RegisterTrainerInput{
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Specialization: body.Specialization,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	_ = h.audit.Log(c.Request.Context(), services.AuditEntry{
		Username:  creds.Username,
		Action:    services.AuditActionRegister,
		Result:    services.AuditResultSuccess,
		IPAddress: c.ClientIP(),
		Metadata:  map[string]any{"role": "TRAINER"},
	})
	response.Success(c, http.StatusCreated, creds)
}

// GET /api/trainers/:username
func (h *TrainerHandler) Get(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	trainer, err := h.trainers.GetByUsername(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainer)
}

// PUT /api/trainers/:username
func (h *TrainerHandler) Update(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	var body updateTrainerRequest
	if !bindAndValidate(c, &body) {
		return
	}

	trainer, err := h.trainers.Update(c.Request.Context(), username, services.UpdateTrainerInput{
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Specialization: body.Specialization,
		IsActive:       body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainer)
}

// PATCH /api/trainers/:username/activation
func (h *TrainerHandler) SetActivation(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	var body activationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.trainers.SetActive(c.Request.Context(), username, *body.IsActive); err != nil {
		response.Error(c, err)
		return
	}

	_ = h.audit.Log(c.Request.Context(), services.AuditEntry{
		Username:  username,
		Action:    services.AuditActionActivation,
		Result:    services.AuditResultSuccess,
		IPAddress: c.ClientIP(),
		Metadata:  map[string]any{"is_active": *body.IsActive},
	})
	response.NoContent(c)
}

// GET /api/trainers/:username/trainings
func (h *TrainerHandler) Trainings(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	filters, ok := parseTrainingFilters(c)
	if !ok {
		return
	}

	trainings, err := h.trainings.ListForTrainer(c.Request.Context(), username, filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainings)
}

// GET /api/trainers/:username/stats/monthly?year=&month=
func (h *TrainerHandler) MonthlyStats(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2200 {
		response.Error(c, errors.NewBadRequest("year is required"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		response.Error(c, errors.NewBadRequest("month must be 1-12"))
		return
	}

	minutes := 0
	if h.stats != nil {
		minutes = h.stats.MonthlyDuration(c.Request.Context(),
			middleware.CorrelationID(c), username, year, time.Month(month))
	}
	response.Success(c, http.StatusOK, gin.H{
		"username":         username,
		"year":             year,
		"month":            month,
		"duration_minutes": minutes,
	})
}

// GET /api/trainers/:username/stats
func (h *TrainerHandler) FullStats(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	result := stats.MonthlyStats{}
	if h.stats != nil {
		result = h.stats.FullStats(c.Request.Context(), middleware.CorrelationID(c), username)
	}
	response.Success(c, http.StatusOK, result)
}
