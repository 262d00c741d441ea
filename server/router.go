package server

import (
	"net/http"
	"time"

	httpHandler "nosbot/interfaces/http"
	"nosbot/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	channelHandler httpHandler.IChannelHandler,
	playlistHandler httpHandler.IPlaylistHandler,
	secretKey string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "https://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("api")
	api.GET("/quota/usage", channelHandler.QuotaUsage)

	channels := api.Group("/channels")
	{
		channels.GET("/lookup", channelHandler.Lookup)
		channels.GET("/search", channelHandler.Search)
		channels.POST("/:channelId/index", channelHandler.StartIndexing)
		channels.GET("/:channelId/index", channelHandler.IndexingStatus)
	}

	playlists := api.Group("/playlists")
	{
		// Generation works anonymously; a token ties the playlist to an
		// account and unlocks the pro budget.
		playlists.POST("/generate", middleware.OptionalAuth(secretKey), playlistHandler.Generate)
		playlists.GET("", middleware.Auth(secretKey), playlistHandler.History)
	}

	return router
}
