package http

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/bootstrap"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// NewRouter wires every route against the bootstrapped services. Templates and
// the stylesheet are embedded so the binary can run from any working
// directory.
func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)

	staticRoot, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	router.StaticFS("/static", http.FS(staticRoot))

	pageHandler := handler.NewPageHandler(app.Config.App.Name, app.Docs, app.Sessions, app.Settings, app.Ask)
	documentHandler := handler.NewDocumentHandler(app.Docs)
	chatHandler := handler.NewChatHandler(app.Docs, app.Sessions, app.Settings, app.Ask)
	healthHandler := handler.NewHealthHandler(app)

	router.GET("/", pageHandler.Index)
	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/documents", documentHandler.List)
		v1.POST("/documents", documentHandler.Upload)
		v1.DELETE("/documents/:id", documentHandler.Remove)
		// HTML forms cannot issue DELETE, so removal is also a POST.
		v1.POST("/documents/:id/remove", documentHandler.Remove)
		v1.POST("/documents/:id/select", documentHandler.Select)

		v1.GET("/sessions", chatHandler.ListSessions)
		v1.POST("/sessions", chatHandler.CreateSession)
		v1.POST("/sessions/:id/select", chatHandler.SelectSession)
		v1.GET("/sessions/:id/messages", chatHandler.GetMessages)

		v1.POST("/ask", chatHandler.Ask)
		v1.POST("/theme/toggle", chatHandler.ToggleTheme)
	}

	return router
}
