package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/gamefiles"
	"github.com/squadmgr/squad-server-manager/internal/models"
)

// GameFilesHandler mutates the on-disk configuration of a server install:
// RCON credentials, generic config files, the ban list and the admin list.
// The filesystem stays the source of truth whether or not the process runs.
type GameFilesHandler struct {
	store   ServerStore
	control ServerController
}

// NewGameFilesHandler creates a new game file handler.
func NewGameFilesHandler(store ServerStore, control ServerController) *GameFilesHandler {
	return &GameFilesHandler{store: store, control: control}
}

func (h *GameFilesHandler) installPath(c *gin.Context) (int64, string, bool) {
	id, ok := serverID(c)
	if !ok {
		return 0, "", false
	}
	cfg, err := h.store.Find(id)
	if err != nil {
		respondError(c, err)
		return 0, "", false
	}
	return id, cfg.InstallPath, true
}

// GetRconConfig returns the parsed Rcon.cfg credentials.
func (h *GameFilesHandler) GetRconConfig(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	creds, err := gamefiles.ReadRconCredentials(installPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, creds)
}

type rconConfigRequest struct {
	Password *string `json:"password"`
	Port     *int    `json:"port"`
}

// UpdateRconConfig rewrites RCON credentials in Rcon.cfg and mirrors them
// into the stored configuration. Rejected while the server runs; the live
// process would keep the old listener.
func (h *GameFilesHandler) UpdateRconConfig(c *gin.Context) {
	id, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	if h.control.IsRunning(id) {
		respondError(c, errs.Wrap(errs.ErrConflict, "stop server %d before changing rcon credentials", id))
		return
	}

	var req rconConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password == nil && req.Port == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to change"})
		return
	}

	if err := gamefiles.WriteRconCredentials(installPath, req.Password, req.Port); err != nil {
		respondError(c, err)
		return
	}

	cfg, err := h.store.Find(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Password != nil {
		cfg.RconPassword = *req.Password
	}
	if req.Port != nil {
		cfg.RconPort = *req.Port
	}
	if err := h.store.Update(cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rcon configuration updated"})
}

// GetConfigFile returns the raw content of a named ServerConfig file.
func (h *GameFilesHandler) GetConfigFile(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	name := c.Param("name")
	content, err := gamefiles.ReadConfigFile(installPath, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "content": content})
}

type configFileRequest struct {
	Content string `json:"content"`
}

// UpdateConfigFile overwrites a named ServerConfig file. When the server is
// live, operators are notified in-game that the file changed; the broadcast
// is best-effort and its failure only logged.
func (h *GameFilesHandler) UpdateConfigFile(c *gin.Context) {
	id, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	name := c.Param("name")

	var req configFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := gamefiles.WriteConfigFile(installPath, name, req.Content); err != nil {
		respondError(c, err)
		return
	}

	if h.control.IsRunning(id) {
		broadcast := fmt.Sprintf("AdminBroadcast Server configuration file %s was updated", name)
		if _, err := h.control.ExecuteCommand(id, broadcast); err != nil {
			log.Printf("[GameFiles] Broadcast after %s update failed: %v", name, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "config file updated"})
}

// ListBans returns the parsed ban list.
func (h *GameFilesHandler) ListBans(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	bans, err := gamefiles.ListBans(installPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bans)
}

// AddBan appends a new ban line, refusing identities with an active entry.
func (h *GameFilesHandler) AddBan(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	var req models.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := gamefiles.AddBan(installPath, req, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// EditBan rewrites one ban line matched by its original text.
func (h *GameFilesHandler) EditBan(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	var req models.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := gamefiles.EditBan(installPath, req.OriginalLine, req.Expires, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// RemoveBan deletes one ban line matched by its original text.
func (h *GameFilesHandler) RemoveBan(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	var req models.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := gamefiles.RemoveBan(installPath, req.OriginalLine); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ban removed"})
}

// GetAdmins returns the parsed Admins.cfg.
func (h *GameFilesHandler) GetAdmins(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	cfg, err := gamefiles.ReadAdmins(installPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// AddAdminGroup adds a permission group.
func (h *GameFilesHandler) AddAdminGroup(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	var req models.AdminGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := gamefiles.AddAdminGroup(installPath, req.Name, req.Permissions); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "group added"})
}

// DeleteAdminGroup removes a group and every admin assignment referencing it.
func (h *GameFilesHandler) DeleteAdminGroup(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	if err := gamefiles.DeleteAdminGroup(installPath, c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "group deleted"})
}

// AddAdmin assigns a player to an existing group.
func (h *GameFilesHandler) AddAdmin(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	var req models.AdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := gamefiles.AddAdmin(installPath, req.ID, req.GroupName, req.Comment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "admin added"})
}

// RemoveAdmin deletes one admin assignment matched by its original line.
func (h *GameFilesHandler) RemoveAdmin(c *gin.Context) {
	_, installPath, ok := h.installPath(c)
	if !ok {
		return
	}
	var req models.AdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := gamefiles.RemoveAdmin(installPath, req.OriginalLine); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "admin removed"})
}
