package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/dialog"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/logging"
)

// Controller is the part of the orchestrator the HTTP surface needs.
type Controller interface {
	Trigger() bool
	Snapshot() dialog.Snapshot
	Subscribe(eventType dialog.EventType, handler dialog.EventHandler) func()
}

type Handler struct {
	ctrl     Controller
	upgrader websocket.Upgrader
}

// NewRouter wires the session controller routes. speechBridge may be nil when
// the speech service is not a bridge.
func NewRouter(ctrl Controller, speechBridge http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	h := &Handler{
		ctrl: ctrl,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/start", h.Start)
		apiGroup.GET("/state", h.State)
	}

	r.GET("/ws/state", h.StateStream)
	if speechBridge != nil {
		r.GET("/ws/speech", gin.WrapH(speechBridge))
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logging.Debugf("http: %s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  h.ctrl.Snapshot().Path,
	})
}

// Start is the START/CLICK trigger.
func (h *Handler) Start(c *gin.Context) {
	snap := h.ctrl.Snapshot()
	if !snap.State.Startable() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "a conversation is already running",
			"state": snap,
		})
		return
	}
	if !h.ctrl.Trigger() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dialogue manager is not accepting starts"})
		return
	}
	c.JSON(http.StatusAccepted, snap)
}

func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

// StateStream pushes the current snapshot and then one snapshot per state
// change. Bus delivery is asynchronous, so stale snapshots are dropped by Seq.
func (h *Handler) StateStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warnf("ws/state: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates := make(chan dialog.Snapshot, 32)
	unsubscribe := h.ctrl.Subscribe(dialog.EventTypeStateChanged, func(e dialog.Event) {
		ev, ok := e.(*dialog.StateChangedEvent)
		if !ok {
			return
		}
		select {
		case updates <- ev.New:
		default:
			logging.Warnf("ws/state: client too slow, dropping seq %d", ev.New.Seq)
		}
	})
	defer unsubscribe()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	current := h.ctrl.Snapshot()
	if err := conn.WriteJSON(current); err != nil {
		return
	}
	lastSeq := current.Seq

	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-updates:
			if snap.Seq <= lastSeq {
				continue
			}
			if err := conn.WriteJSON(snap); err != nil {
				logging.Debugf("ws/state: write failed: %v", err)
				return
			}
			lastSeq = snap.Seq
		}
	}
}
