package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"driftline/pkg/logger"
)

const (
	wsActionSubscribe   = "subscribe"
	wsActionUnsubscribe = "unsubscribe"

	reconnectInitial = time.Second
	reconnectMax     = 30 * time.Second
)

// wsControl is the frame the client sends to manage channel membership.
type wsControl struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// wsEvent is the frame the realtime endpoint pushes: an envelope tagged with
// the channel it was broadcast on.
type wsEvent struct {
	Channel string `json:"channel"`
	Envelope
}

// WSFeed is a change feed over a single websocket connection to the backend's
// realtime endpoint. It reconnects with backoff and re-subscribes every
// active channel after a drop; subscribers never see the reconnect.
type WSFeed struct {
	url    string
	header func() http.Header
	log    *logger.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	subs   map[int64]wsSubscription
	nextID int64
	closed bool

	done chan struct{}
}

type wsSubscription struct {
	channel string
	handler Handler
}

// NewWSFeed creates a feed for the given realtime URL. header, when non-nil,
// supplies per-connect request headers (the session bearer token).
func NewWSFeed(url string, header func() http.Header, log *logger.Logger) *WSFeed {
	return &WSFeed{
		url:    url,
		header: header,
		log:    log,
		subs:   make(map[int64]wsSubscription),
		done:   make(chan struct{}),
	}
}

// Start connects and keeps the connection alive until ctx is cancelled or
// Close is called.
func (f *WSFeed) Start(ctx context.Context) {
	go f.run(ctx)
}

// Close tears the connection down. Active subscriptions are discarded.
func (f *WSFeed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	conn := f.conn
	f.mu.Unlock()

	close(f.done)
	if conn != nil {
		_ = conn.Close()
	}
}

func (f *WSFeed) Subscribe(ctx context.Context, channel string, handler Handler) (CancelFunc, error) {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs[id] = wsSubscription{channel: channel, handler: handler}
	conn := f.conn
	f.mu.Unlock()

	if conn != nil {
		_ = f.writeControl(conn, wsControl{Action: wsActionSubscribe, Channel: channel})
	}

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		still := false
		for _, s := range f.subs {
			if s.channel == channel {
				still = true
				break
			}
		}
		conn := f.conn
		f.mu.Unlock()

		if conn != nil && !still {
			_ = f.writeControl(conn, wsControl{Action: wsActionUnsubscribe, Channel: channel})
		}
	}, nil
}

func (f *WSFeed) run(ctx context.Context) {
	backoff := reconnectInitial
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		default:
		}

		conn, err := f.dial(ctx)
		if err != nil {
			if f.log != nil {
				f.log.Warnf("realtime connect failed, retrying in %s: %v", backoff, err)
			}
			select {
			case <-ctx.Done():
				return
			case <-f.done:
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > reconnectMax {
				backoff = reconnectMax
			}
			continue
		}
		backoff = reconnectInitial

		f.attach(conn)
		f.readLoop(conn)
		f.detach(conn)
	}
}

func (f *WSFeed) dial(ctx context.Context) (*websocket.Conn, error) {
	var header http.Header
	if f.header != nil {
		header = f.header()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, header)
	return conn, err
}

// attach installs the new connection and replays subscriptions for every
// channel that was active before the drop.
func (f *WSFeed) attach(conn *websocket.Conn) {
	f.mu.Lock()
	f.conn = conn
	channels := make(map[string]struct{})
	for _, s := range f.subs {
		channels[s.channel] = struct{}{}
	}
	f.mu.Unlock()

	for ch := range channels {
		_ = f.writeControl(conn, wsControl{Action: wsActionSubscribe, Channel: ch})
	}
}

func (f *WSFeed) detach(conn *websocket.Conn) {
	f.mu.Lock()
	if f.conn == conn {
		f.conn = nil
	}
	f.mu.Unlock()
	_ = conn.Close()
}

func (f *WSFeed) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var evt wsEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			if f.log != nil {
				f.log.Warnf("dropping undecodable realtime frame: %v", err)
			}
			continue
		}
		f.dispatch(evt)
	}
}

func (f *WSFeed) dispatch(evt wsEvent) {
	f.mu.Lock()
	handlers := make([]Handler, 0, len(f.subs))
	for _, s := range f.subs {
		if s.channel == evt.Channel {
			handlers = append(handlers, s.handler)
		}
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(evt.Envelope)
	}
}

func (f *WSFeed) writeControl(conn *websocket.Conn, ctrl wsControl) error {
	data, err := json.Marshal(ctrl)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}
