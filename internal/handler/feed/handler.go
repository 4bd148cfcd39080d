package feed

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	feedService "github.com/zhouzirui/happy-thoughts/backend/internal/service/feed"
	"github.com/zhouzirui/happy-thoughts/backend/pkg/utils"
)

const (
	pingInterval = 15 * time.Second
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
)

// Source 提供实时事件订阅。
type Source interface {
	Subscribe() (string, <-chan feedService.Event, func())
}

// Handler 通过 SSE 和 WebSocket 推送想法变更
type Handler struct {
	source       Source
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// New 创建实时推送处理器
func New(source Source, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		source: source,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pingInterval: pingInterval,
	}
}

// RegisterRoutes 注册实时推送路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/thoughts/stream", h.handleStream)
	r.Get("/thoughts/ws", h.handleWebSocket)
}

type readyPayload struct {
	Subscriber string `json:"subscriber"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	id, events, cancel := h.source.Subscribe()
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	log := h.logger.With(zap.String("subscriber", id), zap.String("transport", "sse"))
	log.Debug("feed subscriber connected")
	defer log.Debug("feed subscriber disconnected")

	if err := utils.SendSSEEvent(w, flusher, "ready", readyPayload{Subscriber: id}); err != nil {
		return
	}

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "ping"); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(event.Type), event); err != nil {
				log.Debug("sse write failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id, events, cancel := h.source.Subscribe()
	defer cancel()

	log := h.logger.With(zap.String("subscriber", id), zap.String("transport", "websocket"))
	log.Debug("feed subscriber connected")
	defer log.Debug("feed subscriber disconnected")

	// the feed is one-way; reading only notices when the client leaves
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
