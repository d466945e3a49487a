package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/middleware"
	"github.com/nursultanq/gymapp/internal/models"
	"github.com/nursultanq/gymapp/internal/services"
	"github.com/nursultanq/gymapp/internal/stats"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/response"
)

// TrainingHandler records training sessions and notifies the stats service.
type TrainingHandler struct {
	trainings *services.TrainingService
	stats     *stats.Client
}

type createTrainingRequest struct {
	TraineeUsername string `json:"trainee_username" validate:"required,notblank"`
	TrainerUsername string `json:"trainer_username" validate:"required,notblank"`
	Name            string `json:"name" validate:"required,notblank,max=128"`
	Date            string `json:"date" validate:"required,notblank"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
}

// NewTrainingHandler constructs the handler. The stats client may be nil.
func NewTrainingHandler(db *gorm.DB, statsClient *stats.Client) (*TrainingHandler, error) {
	trainings, err := services.NewTrainingService(db)
	if err != nil {
		return nil, err
	}
	return &TrainingHandler{trainings: trainings, stats: statsClient}, nil
}

// POST /api/trainings
//
// Either party of the session can record it, but only their own side: the
// principal must be the named trainee or the named trainer.
func (h *TrainingHandler) Create(c *gin.Context) {
	var body createTrainingRequest
	if !bindAndValidate(c, &body) {
		return
	}

	target := body.TraineeUsername
	if principalRole(c) == models.RoleTrainer {
		target = body.TrainerUsername
	}
	if !requireOwnership(c, target) {
		return
	}

	date, ok := parseOptionalDate(c, body.Date)
	if !ok {
		return
	}
	if date == nil {
		// A whitespace-only date slips past the required tag.
		response.Error(c, errors.NewBadRequest("training date is required"))
		return
	}

	training, err := h.trainings.Create(c.Request.Context(), services.CreateTrainingInput{
		TraineeUsername: body.TraineeUsername,
		TrainerUsername: body.TrainerUsername,
		Name:            body.Name,
		Date:            *date,
		DurationMinutes: body.DurationMinutes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.notify(c, training, false)
	response.Success(c, http.StatusCreated, training)
}

// DELETE /api/trainings/:id
//
// Only a party to the session can remove it.
func (h *TrainingHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	training, err := h.trainings.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	target := ""
	if training.Trainee != nil {
		target = training.Trainee.Username
	}
	if principalRole(c) == models.RoleTrainer && training.Trainer != nil {
		target = training.Trainer.Username
	}
	if !requireOwnership(c, target) {
		return
	}

	if _, err := h.trainings.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	h.notify(c, training, true)
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *TrainingHandler) notify(c *gin.Context, training *models.Training, deleted bool) {
	if h.stats == nil || training.Trainer == nil {
		return
	}
	h.stats.NotifyTraining(c.Request.Context(), middleware.CorrelationID(c), stats.TrainingEvent{
		TrainerUsername: training.Trainer.Username,
		TrainerFirst:    training.Trainer.FirstName,
		TrainerLast:     training.Trainer.LastName,
		IsActive:        training.Trainer.IsActive,
		Date:            training.Date,
		DurationMinutes: training.DurationMinutes,
		Delete:          deleted,
	})
}
