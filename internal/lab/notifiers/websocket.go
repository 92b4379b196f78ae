package notifiers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/daniacca/genelab/internal/lab"
	"github.com/gorilla/websocket"
)

// WebSocketNotifier streams events to connected presentation clients. A
// client may subscribe to a single session or to all of them.
type WebSocketNotifier struct {
	id         string
	mu         sync.RWMutex
	clients    map[*websocket.Conn]lab.SessionID
	upgrader   websocket.Upgrader
	broadcast  chan lab.Event
	register   chan subscription
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

type subscription struct {
	conn    *websocket.Conn
	session lab.SessionID
}

func NewWebSocketNotifier(id string) *WebSocketNotifier {
	notifier := &WebSocketNotifier{
		id:         id,
		clients:    make(map[*websocket.Conn]lab.SessionID),
		broadcast:  make(chan lab.Event, 256),
		register:   make(chan subscription),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	notifier.wg.Add(1)
	go notifier.run()

	return notifier
}

func (wsn *WebSocketNotifier) ID() string { return wsn.id }

func (wsn *WebSocketNotifier) Type() string { return "websocket" }

// RegisterClient subscribes conn to events of session, or of every session
// when session is empty.
func (wsn *WebSocketNotifier) RegisterClient(conn *websocket.Conn, session lab.SessionID) {
	select {
	case wsn.register <- subscription{conn: conn, session: session}:
	case <-wsn.done:
	}
}

func (wsn *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	select {
	case wsn.unregister <- conn:
	case <-wsn.done:
	}
}

// ClientCount returns the number of connected clients
func (wsn *WebSocketNotifier) ClientCount() int {
	wsn.mu.RLock()
	defer wsn.mu.RUnlock()
	return len(wsn.clients)
}

func (wsn *WebSocketNotifier) Notify(ctx context.Context, event lab.Event) error {
	select {
	case <-wsn.done:
		return fmt.Errorf("notifier %s is closed", wsn.id)
	default:
	}

	select {
	case wsn.broadcast <- event:
		return nil
	case <-wsn.done:
		return fmt.Errorf("notifier %s is closed", wsn.id)
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(1 * time.Second):
		return fmt.Errorf("notification queue full")
	}
}

// ServeHTTP upgrades the request and keeps the client subscribed until it
// disconnects. The optional "session" query parameter filters events.
func (wsn *WebSocketNotifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wsn.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	wsn.RegisterClient(conn, lab.SessionID(r.URL.Query().Get("session")))

	// reads only detect the close; clients never send anything we use
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			wsn.UnregisterClient(conn)
			return
		}
	}
}

func (wsn *WebSocketNotifier) run() {
	defer wsn.wg.Done()
	for {
		select {
		case <-wsn.done:
			return

		case sub := <-wsn.register:
			if sub.conn == nil {
				continue
			}
			wsn.mu.Lock()
			wsn.clients[sub.conn] = sub.session
			wsn.mu.Unlock()

		case conn := <-wsn.unregister:
			if conn == nil {
				continue
			}
			wsn.mu.Lock()
			if _, ok := wsn.clients[conn]; ok {
				delete(wsn.clients, conn)
				conn.Close()
			}
			wsn.mu.Unlock()

		case event := <-wsn.broadcast:
			wsn.deliver(event)
		}
	}
}

func (wsn *WebSocketNotifier) deliver(event lab.Event) {
	jsonData, err := event.JSON()
	if err != nil {
		return
	}

	wsn.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(wsn.clients))
	for conn, session := range wsn.clients {
		if session == "" || session == event.SessionID {
			conns = append(conns, conn)
		}
	}
	wsn.mu.RUnlock()

	var failed []*websocket.Conn
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, jsonData); err != nil {
			failed = append(failed, conn)
			conn.Close()
		}
	}

	if len(failed) > 0 {
		wsn.mu.Lock()
		for _, conn := range failed {
			delete(wsn.clients, conn)
		}
		wsn.mu.Unlock()
	}
}

// Close disconnects every client and stops the broadcaster.
func (wsn *WebSocketNotifier) Close() error {
	wsn.closeOnce.Do(func() {
		close(wsn.done)
		wsn.wg.Wait()

		wsn.mu.Lock()
		for conn := range wsn.clients {
			conn.Close()
			delete(wsn.clients, conn)
		}
		wsn.mu.Unlock()
	})
	return nil
}
