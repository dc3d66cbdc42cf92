package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	r.SetHTMLTemplate(loadTemplates())

	// Dashboard page
	r.GET("/", h.Index)
	r.POST("/", h.SaveTrackedLists)
	r.GET("/healthz", h.Health)

	// Todo routes (HTML fragments)
	r.GET("/todos", h.ListTodos)
	r.POST("/todos/add", h.AddTodo)
	r.DELETE("/todos/:id/remove", h.RemoveTodo)
	r.POST("/todos/:id/update", h.UpdateTodo)
	r.POST("/todos/:id/move/:direction", h.MoveTodo)

	// Tracked lists
	r.POST("/weather", h.SetWeatherLocations)
	r.POST("/stocks", h.SetStockTickers)

	// Refresh and device sync, triggered by cron or the page
	r.GET("/update/stocks", h.UpdateStocks)
	r.GET("/update/weather", h.UpdateWeather)
	r.GET("/update/display", h.UpdateDisplay)

	// API group
	api := r.Group("/api")
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/display/preview", h.PreviewDisplay)

	// Notifications (SSE)
	api.GET("/notifications/stream", h.NotificationStream)
}
