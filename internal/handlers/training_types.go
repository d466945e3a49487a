package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/services"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/response"
)

// TrainingTypeHandler serves the read-only training-type catalog.
type TrainingTypeHandler struct {
	types *services.TrainingTypeService
}

// NewTrainingTypeHandler constructs the handler.
func NewTrainingTypeHandler(db *gorm.DB) (*TrainingTypeHandler, error) {
	types, err := services.NewTrainingTypeService(db)
	if err != nil {
		return nil, err
	}
	return &TrainingTypeHandler{types: types}, nil
}

// GET /api/training-types
func (h *TrainingTypeHandler) List(c *gin.Context) {
	types, err := h.types.List(c.Request.Context())
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, types)
}
