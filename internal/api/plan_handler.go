package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/planner"
	"lifecoach/coach-api/internal/service"
)

// maxProfileBodySize bounds the intake form payload.
const maxProfileBodySize = 64 << 10

// PlanHandler serves plan generation and plan exports.
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type ExportPlanRequest struct {
	Title  string              `json:"title"`
	Plan   *domain.FitnessPlan `json:"plan" binding:"required"`
	Source planner.Source      `json:"source" binding:"omitempty,oneof=llm llm_direct local_generation"`
}

type PlanExportResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source,omitempty"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

func MapPlanExportToResponse(e *domain.PlanExport) PlanExportResponse {
	return PlanExportResponse{
		ID:          e.ID.Hex(),
		Title:       e.Title,
		Source:      e.Source,
		ContentType: e.ContentType,
		Size:        e.Size,
		CreatedAt:   e.CreatedAt,
	}
}

func MapPlanExportsToResponse(exports []domain.PlanExport) []PlanExportResponse {
	resp := make([]PlanExportResponse, 0, len(exports))
	for i := range exports {
		resp = append(resp, MapPlanExportToResponse(&exports[i]))
	}
	return resp
}

// GenerateFitnessPlan godoc
// @Summary Generate a fitness plan
// @Description Returns a plan for the posted intake form. The body may be the form itself or {"formData": {...}}. Always succeeds for a JSON object; source, note and warning tell which tier produced the plan.
// @Tags Plans
// @Accept json
// @Produce json
// @Param profile body domain.FitnessProfile true "Fitness intake form"
// @Success 200 {object} planner.Result
// @Failure 400 {object} gin.H "Empty body or not a JSON object"
// @Failure 413 {object} gin.H "Body larger than 64KB"
// @Router /plans/fitness [post]
func (h *PlanHandler) GenerateFitnessPlan(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxProfileBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit))
			return
		}
		abortWithError(c, http.StatusBadRequest, "Could not read request body")
		return
	}
	profile, err := decodeIntakeForm(body, zerolog.Ctx(c.Request.Context()))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, h.planService.Generate(c.Request.Context(), profile))
}

// GenerateFromStoredProfile godoc
// @Summary Generate a fitness plan from the stored fitness profile
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} planner.Result
// @Failure 404 {object} gin.H "No fitness profile saved"
// @Router /profiles/fitness/plan [post]
func (h *PlanHandler) GenerateFromStoredProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	result, err := h.planService.GenerateForUser(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			abortWithError(c, http.StatusNotFound, "Save a fitness profile first")
		case errors.Is(err, service.ErrInvalidProfileData):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate plan")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportPlan godoc
// @Summary Save a generated plan for download
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param export body ExportPlanRequest true "Plan to export"
// @Success 201 {object} PlanExportResponse
// @Failure 400 {object} gin.H "Invalid plan"
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /plans/exports [post]
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req ExportPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	export, err := h.planService.Export(c.Request.Context(), userID, req.Title, planner.Result{Plan: req.Plan, Source: req.Source})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlan):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStorageUnavailable):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		default:
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("plan export failed")
			abortWithError(c, http.StatusInternalServerError, "Failed to export plan")
		}
		return
	}
	c.JSON(http.StatusCreated, MapPlanExportToResponse(export))
}

// ListExports godoc
// @Summary List exported plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PlanExportResponse
// @Router /plans/exports [get]
func (h *PlanHandler) ListExports(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exports, err := h.planService.ListExports(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list exports")
		return
	}
	c.JSON(http.StatusOK, MapPlanExportsToResponse(exports))
}

// GetExportURL godoc
// @Summary Temporary download link for an exported plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Export ID"
// @Success 200 {object} service.ExportURLResponse
// @Router /plans/exports/{id}/url [get]
func (h *PlanHandler) GetExportURL(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exportID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	link, err := h.planService.ExportDownloadURL(c.Request.Context(), userID, exportID)
	if err != nil {
		writeExportError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// DeleteExport godoc
// @Summary Delete an exported plan
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Export ID"
// @Success 204
// @Router /plans/exports/{id} [delete]
func (h *PlanHandler) DeleteExport(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exportID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.planService.DeleteExport(c.Request.Context(), userID, exportID); err != nil {
		writeExportError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExportNotOwned):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to access plan export")
	}
}

var (
	errEmptyBody   = errors.New("Request body is required")
	errNotAnObject = errors.New("Request body must be a JSON object")
)

// decodeIntakeForm accepts the form either bare or wrapped in "formData".
// Fields that cannot be read as text are dropped rather than failing the
// request.
func decodeIntakeForm(body []byte, logger *zerolog.Logger) (domain.FitnessProfile, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return domain.FitnessProfile{}, errEmptyBody
	}

	profile, skipped, err := domain.DecodeFitnessProfile(body)
	if err != nil {
		return domain.FitnessProfile{}, errNotAnObject
	}
	if len(skipped) > 0 {
		logger.Warn().Strs("fields", skipped).Msg("ignoring unreadable intake fields")
	}
	return profile, nil
}
