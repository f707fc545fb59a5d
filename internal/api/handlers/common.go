// Package handlers implements the HTTP API around the supervisor registry,
// the config store and the game file mutation layer.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/models"
)

// ServerStore is the persistence surface the handlers need.
type ServerStore interface {
	Find(id int64) (models.ServerConfig, error)
	FindAll() ([]models.ServerConfig, error)
	Create(cfg *models.ServerConfig) error
	Update(cfg models.ServerConfig) error
	Delete(id int64) error
}

// ServerController is the supervisor registry surface the handlers need.
type ServerController interface {
	StartServer(id int64) error
	StopServer(id int64) error
	IsRunning(id int64) bool
	Status(id int64) (models.ServerStatus, error)
	ExecuteCommand(id int64, command string) (string, error)
}

// respondError translates category errors into HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrExecutableNotFound):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrRconNotConnected):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrRconProtocol):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// serverID parses the :id path parameter.
func serverID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return 0, false
	}
	return id, true
}
