package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	ws "github.com/squadmgr/squad-server-manager/internal/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is enforced by the CORS middleware on the HTTP side.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler serves the live streams: per-server chat and update progress.
type StreamHandler struct {
	store   ServerStore
	control ServerController
	updates UpdateRunner
	hub     *ws.Hub
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(store ServerStore, control ServerController, updates UpdateRunner, hub *ws.Hub) *StreamHandler {
	return &StreamHandler{
		store:   store,
		control: control,
		updates: updates,
		hub:     hub,
	}
}

// StartUpdate launches the update command for a stopped server. A second
// update while one is in flight, or an update against a running server, is a
// conflict.
func (h *StreamHandler) StartUpdate(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	if h.control.IsRunning(id) {
		respondError(c, errs.Wrap(errs.ErrConflict, "stop server %d before updating", id))
		return
	}
	cfg, err := h.store.Find(id)
	if err != nil {
		respondError(c, err)
		return
	}

	job, err := h.updates.Start(id, cfg.InstallPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}

// StreamUpdate attaches the single subscriber to an in-flight update job and
// forwards its events until the terminal one.
func (h *StreamHandler) StreamUpdate(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	job, active := h.updates.Active(id)
	if !active {
		respondError(c, errs.Wrap(errs.ErrNotFound, "no update in progress for server %d", id))
		return
	}

	events, err := job.Subscribe()
	if err != nil {
		respondError(c, err)
		return
	}
	defer job.Unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[API] Update stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
	conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""))
}

// StreamChat subscribes a client to a server's chat/event room.
func (h *StreamHandler) StreamChat(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	if _, err := h.store.Find(id); err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[API] Chat stream upgrade failed: %v", err)
		return
	}

	client := &ws.Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Room: ws.ChatRoom(id),
		Send: make(chan *ws.Message, 64),
		Hub:  h.hub,
	}
	h.hub.Register <- client
	go client.WritePump()
	go client.ReadPump()
}
