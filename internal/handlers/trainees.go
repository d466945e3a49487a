package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/accounts"
	"github.com/nursultanq/gymapp/internal/services"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/response"
)

// TraineeHandler serves trainee registration and profile management.
type TraineeHandler struct {
	trainees  *services.TraineeService
	trainers  *services.TrainerService
	trainings *services.TrainingService
	audit     *services.AuditService
}

type registerTraineeRequest struct {
	FirstName   string `json:"first_name" validate:"required,notblank,max=64"`
	LastName    string `json:"last_name" validate:"required,notblank,max=64"`
	DateOfBirth string `json:"date_of_birth"`
	Address     string `json:"address" validate:"max=256"`
}

type updateTraineeRequest struct {
	FirstName   string `json:"first_name" validate:"required,notblank,max=64"`
	LastName    string `json:"last_name" validate:"required,notblank,max=64"`
	DateOfBirth string `json:"date_of_birth"`
	Address     string `json:"address" validate:"max=256"`
	IsActive    *bool  `json:"is_active"`
}

type activationRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type updateTrainersRequest struct {
	Trainers []string `json:"trainers" validate:"required"`
}

// NewTraineeHandler constructs the handler with its service dependencies.
func NewTraineeHandler(db *gorm.DB, store *accounts.Store) (*TraineeHandler, error) {
	trainees, err := services.NewTraineeService(db, store)
	if err != nil {
		return nil, err
	}
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
	return &TraineeHandler{trainees: trainees, trainers: trainers, trainings: trainings, audit: audit}, nil
}

// POST /api/public/trainees
func (h *TraineeHandler) Register(c *gin.Context) {
	var body registerTraineeRequest
	if !bindAndValidate(c, &body) {
		return
	}

	dateOfBirth, ok := parseOptionalDate(c, body.DateOfBirth)
	if !ok {
		return
	}

	creds, err := h.trainees.Register(c.Request.Context(), services.RegisterTraineeInput{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		DateOfBirth: dateOfBirth,
		Address:     body.Address,
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
		Metadata:  map[string]any{"role": "TRAINEE"},
	})
	response.Success(c, http.StatusCreated, creds)
}

// GET /api/trainees/:username
func (h *TraineeHandler) Get(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	trainee, err := h.trainees.GetByUsername(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainee)
}

// PUT /api/trainees/:username
func (h *TraineeHandler) Update(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	var body updateTraineeRequest
	if !bindAndValidate(c, &body) {
		return
	}

	dateOfBirth, ok := parseOptionalDate(c, body.DateOfBirth)
	if !ok {
		return
	}

	trainee, err := h.trainees.Update(c.Request.Context(), username, services.UpdateTraineeInput{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		DateOfBirth: dateOfBirth,
		Address:     body.Address,
		IsActive:    body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainee)
}

// DELETE /api/trainees/:username
func (h *TraineeHandler) Delete(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	if err := h.trainees.Delete(c.Request.Context(), username); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PATCH /api/trainees/:username/activation
func (h *TraineeHandler) SetActivation(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	var body activationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.trainees.SetActive(c.Request.Context(), username, *body.IsActive); err != nil {
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

// PUT /api/trainees/:username/trainers
func (h *TraineeHandler) UpdateTrainers(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	var body updateTrainersRequest
	if !bindAndValidate(c, &body) {
		return
	}

	trainers, err := h.trainees.UpdateTrainers(c.Request.Context(), username, body.Trainers)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainers)
}

// GET /api/trainees/:username/unassigned-trainers
func (h *TraineeHandler) UnassignedTrainers(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	trainers, err := h.trainers.ListUnassigned(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainers)
}

// GET /api/trainees/:username/trainings
func (h *TraineeHandler) Trainings(c *gin.Context) {
	username := c.Param("username")
	if !requireOwnership(c, username) {
		return
	}

	filters, ok := parseTrainingFilters(c)
	if !ok {
		return
	}

	trainings, err := h.trainings.ListForTrainee(c.Request.Context(), username, filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainings)
}

// parseOptionalDate accepts "2006-01-02" or RFC 3339. An empty value is not
// an error; a malformed one writes the 400 and returns false.
func parseOptionalDate(c *gin.Context, value string) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}

	parsed, err := parseDate(value)
	if err != nil {
		response.Error(c, errors.NewBadRequest("invalid date, use YYYY-MM-DD"))
		return nil, false
	}
	return &parsed, true
}

func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, stderrors.New("unsupported date format")
	}
	return parsed, nil
}

func parseTrainingFilters(c *gin.Context) (services.TrainingFilters, bool) {
	filters := services.TrainingFilters{
		TrainerName:  strings.TrimSpace(c.Query("trainer_name")),
		TraineeName:  strings.TrimSpace(c.Query("trainee_name")),
		TrainingType: strings.TrimSpace(c.Query("training_type")),
	}

	for _, q := range []struct {
		key  string
		dest **time.Time
	}{
		{"period_from", &filters.PeriodFrom},
		{"period_to", &filters.PeriodTo},
	} {
		value := strings.TrimSpace(c.Query(q.key))
		if value == "" {
			continue
		}
		parsed, err := parseDate(value)
		if err != nil {
			response.Error(c, errors.NewBadRequest("invalid "+q.key+", use YYYY-MM-DD"))
			return services.TrainingFilters{}, false
		}
		*q.dest = &parsed
	}
	return filters, true
}
