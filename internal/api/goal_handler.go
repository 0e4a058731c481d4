package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/repository"
	"lifecoach/coach-api/internal/service"
)

type GoalHandler struct {
	goalService service.GoalService
}

func NewGoalHandler(goalService service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

type CreateGoalRequest struct {
	Mode        domain.Mode `json:"mode" binding:"required"`
	Title       string      `json:"title" binding:"required"`
	Description string      `json:"description"`
	TargetDate  *time.Time  `json:"targetDate"`
}

// UpdateGoalRequest only changes the fields that are present.
type UpdateGoalRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *domain.GoalStatus `json:"status"`
	Progress    *int               `json:"progress"`
	TargetDate  *time.Time         `json:"targetDate"`
}

type GoalResponse struct {
	ID          string            `json:"id"`
	Mode        domain.Mode       `json:"mode"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      domain.GoalStatus `json:"status"`
	Progress    int               `json:"progress"`
	TargetDate  *time.Time        `json:"targetDate,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func MapGoalToResponse(g *domain.Goal) GoalResponse {
	return GoalResponse{
		ID:          g.ID.Hex(),
		Mode:        g.Mode,
		Title:       g.Title,
		Description: g.Description,
		Status:      g.Status,
		Progress:    g.Progress,
		TargetDate:  g.TargetDate,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func writeGoalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrGoalNotOwned):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrGoalTitleRequired),
		errors.Is(err, service.ErrInvalidGoalStatus),
		errors.Is(err, service.ErrProgressOutOfRange):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process goal")
	}
}

// CreateGoal godoc
// @Summary Create a goal
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goal body CreateGoalRequest true "Goal"
// @Success 201 {object} GoalResponse
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	goal, err := h.goalService.Create(c.Request.Context(), userID, service.GoalInput{
		Mode:        req.Mode,
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
	})
	if err != nil {
		writeGoalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapGoalToResponse(goal))
}

// ListGoals godoc
// @Summary List goals
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param mode query string false "Filter by mode"
// @Param status query string false "Filter by status"
// @Success 200 {array} GoalResponse
// @Router /goals [get]
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	goals, err := h.goalService.List(c.Request.Context(), userID, repository.GoalFilter{
		Mode:   domain.Mode(c.Query("mode")),
		Status: domain.GoalStatus(c.Query("status")),
	})
	if err != nil {
		writeGoalError(c, err)
		return
	}
	resp := make([]GoalResponse, 0, len(goals))
	for i := range goals {
		resp = append(resp, MapGoalToResponse(&goals[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetGoal godoc
// @Summary Get a goal
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 200 {object} GoalResponse
// @Router /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	goalID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	goal, err := h.goalService.Get(c.Request.Context(), userID, goalID)
	if err != nil {
		writeGoalError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapGoalToResponse(goal))
}

// UpdateGoal godoc
// @Summary Update a goal
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Param goal body UpdateGoalRequest true "Fields to change"
// @Success 200 {object} GoalResponse
// @Router /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	goalID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	goal, err := h.goalService.Update(c.Request.Context(), userID, goalID, service.GoalUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Progress:    req.Progress,
		TargetDate:  req.TargetDate,
	})
	if err != nil {
		writeGoalError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapGoalToResponse(goal))
}

// DeleteGoal godoc
// @Summary Delete a goal
// @Tags Goals
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 204
// @Router /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	goalID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.goalService.Delete(c.Request.Context(), userID, goalID); err != nil {
		writeGoalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
