package api

import "github.com/gin-gonic/gin"

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {
	router.GET("/health", h.Health)

	api := router.Group("/api")
	{
		api.GET("/models", h.Models)
		api.POST("/generate", h.Generate)
		api.GET("/download/:projectId", h.Download)
		api.GET("/projects", h.ListProjects)

		api.POST("/chat", h.Chat)
		api.POST("/chat/stream", h.ChatStream)

		project := api.Group("/project/:projectId")
		{
			project.GET("", h.GetProject)
			project.DELETE("", h.DeleteProject)
			project.GET("/file/*filePath", h.GetFile)
			project.PUT("/file/*filePath", h.UpdateFile)
			project.PUT("/enhance/*filePath", h.EnhanceFile)
			project.PUT("/rewrite/*filePath", h.RewriteFile)
		}
	}
}
