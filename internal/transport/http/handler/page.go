package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/view"
)

type PageHandler struct {
	appName  string
	docs     *app.DocumentService
	sessions *app.SessionService
	settings *app.SettingsService
	ask      *app.AskService
}

func NewPageHandler(
	appName string,
	docs *app.DocumentService,
	sessions *app.SessionService,
	settings *app.SettingsService,
	ask *app.AskService,
) *PageHandler {
	return &PageHandler{appName: appName, docs: docs, sessions: sessions, settings: settings, ask: ask}
}

// Index renders the whole page from current state. Every list is rebuilt from
// scratch; the template escapes all dynamic text, document names and chat
// titles included.
func (h *PageHandler) Index(c *gin.Context) {
	now := time.Now()
	currentDocID := h.docs.CurrentID()
	currentSessionID := h.sessions.CurrentID()

	page := view.Page{
		AppName:    h.appName,
		Theme:      h.settings.Theme(),
		QueryCount: h.settings.QueryCount(),
	}

	for _, doc := range h.docs.List() {
		page.Documents = append(page.Documents, view.DocumentItem{
			ID:       doc.ID,
			Name:     doc.Name,
			Size:     view.FormatFileSize(doc.Size),
			Selected: doc.ID == currentDocID,
		})
	}
	page.HasDocuments = len(page.Documents) > 0

	for _, session := range h.sessions.List() {
		page.Sessions = append(page.Sessions, view.SessionItem{
			ID:     session.ID,
			Title:  session.Title,
			Age:    view.FormatRelativeAge(session.CreatedAt, now),
			Active: session.ID == currentSessionID,
		})
	}

	if current, ok := h.docs.Current(); ok {
		page.CurrentDocumentName = current.Name
		page.InputEnabled = true
	}

	session, hasSession := h.sessions.Current()
	if hasSession {
		for _, msg := range session.Messages {
			page.Messages = append(page.Messages, view.MessageItem{
				Text: msg.Text,
				Type: string(msg.Type),
			})
		}
		page.Pending = h.ask.Pending(session.ID)
	}
	page.ShowWelcome = !page.HasDocuments || !hasSession

	c.HTML(http.StatusOK, "index.html", page)
}
