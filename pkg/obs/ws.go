package obs

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ssikv/ssikv/pkg/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsSubscriber fans events.Log notifications out to one WebSocket
// connection. Notify must not block, so it hands events to a small
// buffered channel and drops the connection if the reader falls behind.
type wsSubscriber struct {
	conn *websocket.Conn
	out  chan events.Event
	once sync.Once
}

func (s *wsSubscriber) Notify(e events.Event) {
	select {
	case s.out <- e:
	default:
		s.close()
	}
}

func (s *wsSubscriber) close() {
	s.once.Do(func() {
		close(s.out)
		s.conn.Close()
	})
}

// handleEventsWS upgrades to a WebSocket and streams every subsequent
// engine event as a JSON line until the client disconnects.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := &wsSubscriber{conn: conn, out: make(chan events.Event, 64)}
	s.log.Subscribe(sub)
	defer sub.close()

	for e := range sub.out {
		if err := conn.WriteJSON(e); err != nil {
			return
		}
	}
}
