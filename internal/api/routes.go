package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/squadmgr/squad-server-manager/internal/api/handlers"
	"github.com/squadmgr/squad-server-manager/internal/api/middleware"
	"github.com/squadmgr/squad-server-manager/internal/config"
	ws "github.com/squadmgr/squad-server-manager/internal/websocket"
)

// SetupRouter configures and returns the HTTP router
func SetupRouter(
	cfg *config.Config,
	store handlers.ServerStore,
	control handlers.ServerController,
	updater handlers.UpdateRunner,
	hub *ws.Hub,
) *gin.Engine {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	serverHandler := handlers.NewServerHandler(store, control, updater)
	gameFilesHandler := handlers.NewGameFilesHandler(store, control)
	streamHandler := handlers.NewStreamHandler(store, control, updater, hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		servers := v1.Group("/servers")
		{
			servers.GET("", serverHandler.ListServers)
			servers.POST("", serverHandler.CreateServer)
			servers.GET(":id", serverHandler.GetServer)
			servers.PUT(":id", serverHandler.UpdateServer)
			servers.DELETE(":id", serverHandler.DeleteServer)

			servers.POST(":id/start", serverHandler.StartServer)
			servers.POST(":id/stop", serverHandler.StopServer)
			servers.POST(":id/restart", serverHandler.RestartServer)
			servers.GET(":id/status", serverHandler.GetServerStatus)
			servers.POST(":id/command", serverHandler.ExecuteCommand)

			servers.GET(":id/rcon-config", gameFilesHandler.GetRconConfig)
			servers.PUT(":id/rcon-config", gameFilesHandler.UpdateRconConfig)
			servers.GET(":id/config-files/:name", gameFilesHandler.GetConfigFile)
			servers.PUT(":id/config-files/:name", gameFilesHandler.UpdateConfigFile)

			servers.GET(":id/bans", gameFilesHandler.ListBans)
			servers.POST(":id/bans", gameFilesHandler.AddBan)
			servers.PUT(":id/bans", gameFilesHandler.EditBan)
			servers.DELETE(":id/bans", gameFilesHandler.RemoveBan)

			servers.GET(":id/admins", gameFilesHandler.GetAdmins)
			servers.POST(":id/admins", gameFilesHandler.AddAdmin)
			servers.DELETE(":id/admins", gameFilesHandler.RemoveAdmin)
			servers.POST(":id/admins/groups", gameFilesHandler.AddAdminGroup)
			servers.DELETE(":id/admins/groups/:name", gameFilesHandler.DeleteAdminGroup)

			servers.POST(":id/update", streamHandler.StartUpdate)
			servers.GET(":id/update/stream", streamHandler.StreamUpdate)
			servers.GET(":id/chat/ws", streamHandler.StreamChat)
		}
	}

	return router
}
