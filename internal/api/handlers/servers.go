package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/models"
	"github.com/squadmgr/squad-server-manager/internal/updates"
)

// UpdateRunner is the update manager surface the handlers need.
type UpdateRunner interface {
	Start(serverID int64, installPath string) (*updates.Job, error)
	Active(serverID int64) (*updates.Job, bool)
}

// ServerHandler handles server configuration and lifecycle requests.
type ServerHandler struct {
	store   ServerStore
	control ServerController
	updates UpdateRunner
}

// NewServerHandler creates a new server handler.
func NewServerHandler(store ServerStore, control ServerController, updates UpdateRunner) *ServerHandler {
	return &ServerHandler{
		store:   store,
		control: control,
		updates: updates,
	}
}

// ListServers returns all configured servers. The running flag is answered
// from the live registry, not the persisted mirror.
func (h *ServerHandler) ListServers(c *gin.Context) {
	servers, err := h.store.FindAll()
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range servers {
		servers[i].IsRunning = h.control.IsRunning(servers[i].ID)
	}
	c.JSON(http.StatusOK, servers)
}

// GetServer returns one server configuration.
func (h *ServerHandler) GetServer(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	cfg, err := h.store.Find(id)
	if err != nil {
		respondError(c, err)
		return
	}
	cfg.IsRunning = h.control.IsRunning(id)
	c.JSON(http.StatusOK, cfg)
}

// CreateServer registers a new server configuration.
func (h *ServerHandler) CreateServer(c *gin.Context) {
	var cfg models.ServerConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg.ID = 0
	cfg.IsRunning = false

	if err := h.store.Create(&cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// UpdateServer replaces a server configuration. Rejected while the server is
// running; ports and credentials of a live process cannot change underneath
// it.
func (h *ServerHandler) UpdateServer(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	if h.control.IsRunning(id) {
		respondError(c, errs.Wrap(errs.ErrConflict, "stop server %d before changing its configuration", id))
		return
	}

	var cfg models.ServerConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg.ID = id

	if err := h.store.Update(cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeleteServer removes a server configuration, stopping its process first. A
// delete while an update is in flight is rejected.
func (h *ServerHandler) DeleteServer(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	if _, active := h.updates.Active(id); active {
		respondError(c, errs.Wrap(errs.ErrConflict, "update in progress for server %d", id))
		return
	}
	if err := h.control.StopServer(id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "server deleted"})
}

// StartServer spawns the server process.
func (h *ServerHandler) StartServer(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	if err := h.control.StartServer(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "server starting"})
}

// StopServer terminates the server process.
func (h *ServerHandler) StopServer(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	if err := h.control.StopServer(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "server stopped"})
}

// RestartServer stops then starts the server process. The stop only returns
// once the old process has exited, so the new spawn never races the old one
// for its ports; a stop failure aborts the restart.
func (h *ServerHandler) RestartServer(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	if err := h.control.StopServer(id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.control.StartServer(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "server restarting"})
}

// GetServerStatus returns the aggregated live status snapshot.
func (h *ServerHandler) GetServerStatus(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	status, err := h.control.Status(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ExecuteCommand runs a raw RCON command against a running server.
func (h *ServerHandler) ExecuteCommand(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	var req models.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	output, err := h.control.ExecuteCommand(id, req.Command)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CommandResponse{Output: output})
}
