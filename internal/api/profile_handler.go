package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/service"
)

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type SaveProfileRequest struct {
	Data map[string]interface{} `json:"data" binding:"required"`
}

type ProfileResponse struct {
	Mode      domain.Mode            `json:"mode"`
	Data      map[string]interface{} `json:"data"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func MapProfileToResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{Mode: p.Mode, Data: p.Data, UpdatedAt: p.UpdatedAt}
}

func writeProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMode):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidProfileData):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProfileNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to access profile")
	}
}

// ListProfiles godoc
// @Summary List the user's profiles for all modes
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProfileResponse
// @Router /profiles [get]
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	profiles, err := h.profileService.List(c.Request.Context(), userID)
	if err != nil {
		writeProfileError(c, err)
		return
	}
	resp := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		resp = append(resp, MapProfileToResponse(&profiles[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfile godoc
// @Summary Get the profile for one mode
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Param mode path string true "fitness, mental_wellbeing, career or finance"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} gin.H
// @Router /profiles/{mode} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	profile, err := h.profileService.Get(c.Request.Context(), userID, domain.Mode(c.Param("mode")))
	if err != nil {
		writeProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// SaveProfile godoc
// @Summary Create or replace the profile for one mode
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mode path string true "Mode"
// @Param profile body SaveProfileRequest true "Profile data"
// @Success 200 {object} ProfileResponse
// @Router /profiles/{mode} [put]
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	profile, err := h.profileService.Save(c.Request.Context(), userID, domain.Mode(c.Param("mode")), req.Data)
	if err != nil {
		writeProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// DeleteProfile godoc
// @Summary Delete the profile for one mode
// @Tags Profiles
// @Security BearerAuth
// @Param mode path string true "Mode"
// @Success 204
// @Router /profiles/{mode} [delete]
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.profileService.Delete(c.Request.Context(), userID, domain.Mode(c.Param("mode"))); err != nil {
		writeProfileError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
