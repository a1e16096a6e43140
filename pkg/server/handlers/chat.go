// Package handlers implements the HTTP handlers of the API surface.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/biograph"
	"github.com/soundprediction/biograph/pkg/retrieval"
	"github.com/soundprediction/biograph/pkg/server/dto"
	"github.com/soundprediction/biograph/pkg/types"
)

// ChatHandler handles chat and search requests
type ChatHandler struct {
	client *biograph.Client
}

// NewChatHandler creates a new chat handler
func NewChatHandler(client *biograph.Client) *ChatHandler {
	return &ChatHandler{client: client}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	result, err := h.client.Chat(c.Request.Context(), req.ConversationID, req.Query)
	if err != nil {
		if errors.Is(err, biograph.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "conversation_not_found", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "chat_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ChatResponse{
		ConversationID: result.ConversationID,
		Answer:         result.Answer,
		Sources:        result.Sources,
		Confidence:     result.Confidence,
		Mode:           string(result.Mode),
	})
}

// Search handles POST /api/v1/search
func (h *ChatHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	entityTypes := make([]types.EntityType, 0, len(req.EntityTypes))
	for _, t := range req.EntityTypes {
		entityTypes = append(entityTypes, types.EntityType(t))
	}

	result, err := h.client.Search(c.Request.Context(), req.Query, retrieval.Options{
		EntityTypes: entityTypes,
		Limit:       req.Limit,
		MaxHops:     req.MaxHops,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "search_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{
		Entities: result.Entities,
		Subgraph: result.Subgraph,
		Mode:     string(result.Mode),
		Total:    len(result.Entities),
	})
}

// GetConversation handles GET /api/v1/conversations/:id
func (h *ChatHandler) GetConversation(c *gin.Context) {
	id := c.Param("id")
	conv := h.client.GetConversation(id)
	if conv == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "conversation_not_found"})
		return
	}
	c.JSON(http.StatusOK, dto.ConversationResponse{
		ID:       conv.ID,
		Messages: conv.Messages,
	})
}

// DeleteConversation handles DELETE /api/v1/conversations/:id
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	h.client.RemoveConversation(c.Param("id"))
	c.Status(http.StatusNoContent)
}
