package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type ChatHandler struct {
	docs     *app.DocumentService
	sessions *app.SessionService
	settings *app.SettingsService
	ask      *app.AskService
}

func NewChatHandler(
	docs *app.DocumentService,
	sessions *app.SessionService,
	settings *app.SettingsService,
	ask *app.AskService,
) *ChatHandler {
	return &ChatHandler{docs: docs, sessions: sessions, settings: settings, ask: ask}
}

// CreateSession starts a new chat bound to the currently selected document.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	session, err := h.sessions.Create(c.Request.Context(), h.docs.CurrentID())
	if err != nil {
		if errors.Is(err, app.ErrNoDocumentSelected) {
			response.Error(c, http.StatusConflict, response.CodeNoDocumentSelected, "Please select a document first")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		return
	}
	finish(c, session)
}

// ListSessions returns sessions newest first.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	response.OK(c, gin.H{
		"sessions":           h.sessions.List(),
		"current_session_id": h.sessions.CurrentID(),
	})
}

func (h *ChatHandler) SelectSession(c *gin.Context) {
	id := c.Param("id")
	h.sessions.Select(id)
	finish(c, gin.H{"current_session_id": id})
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, app.ErrSessionNotFound.Error())
		return
	}
	response.OK(c, gin.H{
		"session_id": session.ID,
		"title":      session.Title,
		"messages":   session.Messages,
	})
}

type AskRequest struct {
	Question string `json:"question" form:"question"`
}

// Ask runs one send cycle. Failures of the QA backend do not surface here:
// the cycle completes with the fixed fallback assistant message.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.ask.Ask(c.Request.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrQuestionEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNoDocumentSelected):
			response.Error(c, http.StatusConflict, response.CodeNoDocumentSelected, "Please select a document first")
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ask failed")
		}
		return
	}

	finish(c, result)
}

func (h *ChatHandler) ToggleTheme(c *gin.Context) {
	theme := h.settings.ToggleTheme(c.Request.Context())
	finish(c, gin.H{"theme": theme})
}
