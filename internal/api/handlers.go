package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ingres-assistant/internal/chat"
	"ingres-assistant/internal/common/errors"
	translatetext "ingres-assistant/internal/workers/groundwater/translate-text"
)

const chatApology = "Sorry, I'm experiencing technical difficulties. Please try again."

var searchSuggestions = []string{
	"What is the groundwater status in Maharashtra?",
	"Show recharge data for Gujarat 2025",
	"List over-exploited states",
	"Historical data for Rajasthan",
	"Compare Tamil Nadu and Karnataka water levels",
	"Which states have critical groundwater status?",
}

type chatRequest struct {
	Message   string `json:"message" binding:"required,max=2000"`
	SessionID string `json:"sessionId" binding:"omitempty,max=128"`
	Language  string `json:"language" binding:"omitempty,max=16"`
}

type translateRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language" binding:"required,max=16"`
}

func (s *Server) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	resp, err := s.deps.Chat.Chat(ctx, chat.Request{
		Message:   req.Message,
		SessionID: req.SessionID,
		Language:  req.Language,
	})
	if err != nil {
		stdErr := errors.As(err)
		if stdErr.Code == errors.ErrCodeValidationFailed {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": stdErr.Details})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": chatApology, "error": stdErr.Message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) getChatSession(c *gin.Context) {
	sess, err := s.deps.Chat.Session(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Chat session not found"})
			return
		}
		s.logger.Error("failed to fetch chat session", map[string]interface{}{
			"sessionId": c.Param("sessionId"),
			"error":     err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch chat session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (s *Server) searchSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": searchSuggestions})
}

func (s *Server) translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	out, err := s.deps.Translator.Execute(c.Request.Context(), &translatetext.Input{
		Text:     req.Text,
		Language: req.Language,
	})
	if err != nil {
		stdErr := errors.As(err)
		c.JSON(errors.HTTPStatus(stdErr.Code), gin.H{"message": stdErr.Message, "error": stdErr.Details})
		return
	}
	c.JSON(http.StatusOK, out)
}

// legacyGuidance answers the retired data endpoints with a pointer to chat.
func (s *Server) legacyGuidance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Groundwater data is now served through the chat assistant. Send your question to POST /api/chat.",
		"endpoint": "/api/chat",
		"example":  gin.H{"message": "What is the groundwater status in Gujarat 2025?"},
	})
}
