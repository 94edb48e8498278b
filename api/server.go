package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ohtopup/service"
)

// Server wires the HTTP surface together.
type Server struct {
	engine *gin.Engine
}

// NewServer builds the router with all routes registered
func NewServer(
	jwtService *JWTService,
	userService service.UserService,
	gameService service.GameService,
	statsService service.StatsService,
	settingsService service.SettingsService,
) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(userService, jwtService)
	gameHandler := NewGameHandler(gameService, statsService)
	adminHandler := NewAdminHandler(settingsService, statsService)

	api := engine.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)

		games := api.Group("/games", AuthMiddleware(jwtService))
		{
			games.POST("/dice/play", gameHandler.PlayDice)
			games.GET("/dice/history", gameHandler.GetHistory)
			games.GET("/dice/stats", gameHandler.GetStats)
		}

		admin := api.Group("/admin", AuthMiddleware(jwtService), AdminMiddleware())
		{
			admin.GET("/dice/settings", adminHandler.GetSettings)
			admin.PUT("/dice/settings", adminHandler.UpdateSettings)
			admin.POST("/dice/settings/reset", adminHandler.ResetSettings)
			admin.POST("/dice/settings/force-reset", adminHandler.ForceResetSettings)
			admin.GET("/dice/stats", adminHandler.GetSystemStats)
		}
	}

	return &Server{engine: engine}
}

// Handler returns the http handler for the server
func (s *Server) Handler() http.Handler {
	return s.engine
}
