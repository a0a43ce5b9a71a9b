package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type DocumentHandler struct {
	docs *app.DocumentService
}

func NewDocumentHandler(docs *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
		return
	}

	doc, err := h.docs.Add(c.Request.Context(), app.AddDocumentInput{
		Name:    fileHeader.Filename,
		Content: content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotPDF):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are supported")
		case errors.Is(err, app.ErrDocumentTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "file exceeds the 50 MB limit")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	finish(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	response.OK(c, gin.H{
		"documents":           h.docs.List(),
		"current_document_id": h.docs.CurrentID(),
	})
}

func (h *DocumentHandler) Remove(c *gin.Context) {
	id := c.Param("id")
	h.docs.Remove(id)
	finish(c, gin.H{"removed_id": id})
}

// Select sets the current pointer blindly; ids are expected to come from List.
func (h *DocumentHandler) Select(c *gin.Context) {
	id := c.Param("id")
	h.docs.Select(id)
	finish(c, gin.H{"current_document_id": id})
}

// finish answers JSON for API callers and redirects back to the page for
// plain form posts.
func finish(c *gin.Context, data interface{}) {
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	response.OK(c, data)
}
