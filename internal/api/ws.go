package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/UkralStul/academic-feed/internal/events"
)

const writeWait = 5 * time.Second

// stream отдает события ленты по websocket. Параметр entryId ограничивает
// поток одной записью.
func (api *API) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := api.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("[stream][from:%v] upgrade failed: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	entryID := r.URL.Query().Get("entryId")
	ch := api.hub.Subscribe(ctx, entryID)
	log.Debugf("[stream][from:%v] subscribed, entry=%q", r.RemoteAddr, entryID)

	// Читаем, чтобы заметить закрытие соединения клиентом.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(api.pingEvery)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(conn, e); err != nil {
				log.Debugf("[stream][from:%v] write failed: %v", r.RemoteAddr, err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, e events.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(e)
}
