package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/service"
)

type ConversationHandler struct {
	conversationService service.ConversationService
}

func NewConversationHandler(conversationService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

type CreateConversationRequest struct {
	Mode  domain.Mode `json:"mode" binding:"required"`
	Title string      `json:"title"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ConversationResponse struct {
	ID        string           `json:"id"`
	Mode      domain.Mode      `json:"mode"`
	Title     string           `json:"title"`
	Messages  []domain.Message `json:"messages,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func MapConversationToResponse(conv *domain.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        conv.ID.Hex(),
		Mode:      conv.Mode,
		Title:     conv.Title,
		Messages:  conv.Messages,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

func writeConversationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConversationNotOwned):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidMode), errors.Is(err, service.ErrEmptyMessage):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process conversation")
	}
}

// CreateConversation godoc
// @Summary Start a conversation with the coach
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conversation body CreateConversationRequest true "Mode and optional title"
// @Success 201 {object} ConversationResponse
// @Router /conversations [post]
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	conv, err := h.conversationService.Start(c.Request.Context(), userID, req.Mode, req.Title)
	if err != nil {
		writeConversationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapConversationToResponse(conv))
}

// ListConversations godoc
// @Summary List conversations without their messages
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param mode query string false "Filter by mode"
// @Success 200 {array} ConversationResponse
// @Router /conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	convs, err := h.conversationService.List(c.Request.Context(), userID, domain.Mode(c.Query("mode")))
	if err != nil {
		writeConversationError(c, err)
		return
	}
	resp := make([]ConversationResponse, 0, len(convs))
	for i := range convs {
		resp = append(resp, MapConversationToResponse(&convs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetConversation godoc
// @Summary Get a conversation with its messages
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} ConversationResponse
// @Router /conversations/{id} [get]
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	convID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	conv, err := h.conversationService.Get(c.Request.Context(), userID, convID)
	if err != nil {
		writeConversationError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapConversationToResponse(conv))
}

// DeleteConversation godoc
// @Summary Delete a conversation
// @Tags Conversations
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 204
// @Router /conversations/{id} [delete]
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	convID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.conversationService.Delete(c.Request.Context(), userID, convID); err != nil {
		writeConversationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendMessage godoc
// @Summary Send a message and get the coach's reply
// @Description When the coach cannot answer the message is still saved and a warning is returned.
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param message body SendMessageRequest true "Message"
// @Success 201 {object} service.MessageResult
// @Router /conversations/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	convID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	result, err := h.conversationService.SendMessage(c.Request.Context(), userID, convID, req.Content)
	if err != nil {
		writeConversationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
