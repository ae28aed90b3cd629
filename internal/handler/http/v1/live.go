package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shenikar/community_alerts/internal/broadcast"
	"github.com/sirupsen/logrus"
)

const liveMaxMessageSize = 1024

// @Summary Live alert feed
// @Description Websocket. Every frame is a JSON object {eventType, alert, emittedAt}. Only events published after the connection is established are delivered.
// @Tags Live
// @Success 101 "Switching Protocols"
// @Router /live [get]
func (h *Handler) liveFeed(c *gin.Context) {
	log := h.logger.WithField("method", "liveFeed")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту
		log.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	obs := h.hub.Register()
	log = log.WithFields(logrus.Fields{"observer_id": obs.ID(), "remote_addr": c.ClientIP()})
	log.Info("Live observer connected")

	stop := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.liveWritePump(conn, obs, stop, log)
	}()

	h.liveReadPump(conn, log)

	close(stop)
	obs.Close()
	<-writerDone
	log.Info("Live observer disconnected")
}

// liveReadPump читает кадры клиента только для обнаружения разрыва и pong
func (h *Handler) liveReadPump(conn *websocket.Conn, log *logrus.Entry) {
	pongWait := h.cfg.LivePingInterval + h.cfg.LiveWriteTimeout

	conn.SetReadLimit(liveMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("Live connection read error")
			}
			return
		}
		// Входящие сообщения клиента не обрабатываются
	}
}

// liveWritePump отправляет события наблюдателя и ping. Закрывает соединение при выходе.
func (h *Handler) liveWritePump(conn *websocket.Conn, obs *broadcast.Observer, stop <-chan struct{}, log *logrus.Entry) {
	ticker := time.NewTicker(h.cfg.LivePingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-stop:
			return
		case event, ok := <-obs.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.LiveWriteTimeout))
			if !ok {
				// Хаб удалил наблюдателя: отстал от ленты или сервер останавливается
				log.Warn("Observer removed by hub, closing live connection")
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.WithError(err).Warn("Failed to write live event")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.LiveWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
