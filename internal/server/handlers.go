package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ait-tooling/ait/internal/agent"
	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/schema"
)

type sendRequest struct {
	Content string `json:"content" binding:"required"`
}

type messagesResponse struct {
	Messages []bus.DialogMessage `json:"messages"`
}

type toolsResponse struct {
	Tools []schema.ToolDescriptor `json:"tools"`
}

type statusResponse struct {
	Running      bool     `json:"running"`
	Model        string   `json:"model"`
	Capabilities []string `json:"capabilities"`
	Messages     int      `json:"messages"`
	Subscribers  int      `json:"subscribers"`
	Uptime       string   `json:"uptime"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGetMessages(c *gin.Context) {
	c.JSON(http.StatusOK, messagesResponse{Messages: s.messages()})
}

// handleSendMessage runs the automation to completion before answering.
// Progress is streamed over /ws meanwhile.
func (s *Server) handleSendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}

	err := s.chat.SendMessage(c.Request.Context(), req.Content)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, messagesResponse{Messages: s.messages()})
	case errors.Is(err, agent.ErrBusy):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, agent.ErrTurnLimit):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		slog.Error("Automation failed", "err", err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}

func (s *Server) handleClearMessages(c *gin.Context) {
	if err := s.chat.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetTools(c *gin.Context) {
	c.JSON(http.StatusOK, toolsResponse{Tools: s.registry.Descriptors()})
}

func (s *Server) handleStatus(c *gin.Context) {
	snapshot := s.registry.Snapshot()
	names := make([]string, 0, len(snapshot))
	for _, entry := range snapshot {
		names = append(names, entry.ClassName)
	}
	c.JSON(http.StatusOK, statusResponse{
		Running:      s.chat.Running(),
		Model:        s.provider.DefaultModel(),
		Capabilities: names,
		Messages:     len(s.chat.Messages()),
		Subscribers:  s.hub.Subscribers(),
		Uptime:       time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) messages() []bus.DialogMessage {
	msgs := s.chat.Messages()
	if msgs == nil {
		msgs = []bus.DialogMessage{}
	}
	return msgs
}
