// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/adapter/events"
	"github.com/stelios-avg/locom/internal/domain/geo"
	"github.com/stelios-avg/locom/internal/domain/post"
)

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer in front of the API
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LocationSource resolves a user's stored home coordinate
type LocationSource interface {
	Location(ctx context.Context, userID string) (*geo.Coordinate, error)
}

// feedClient is one live feed subscriber
type feedClient struct {
	conn     *websocket.Conn
	send     chan []byte
	observer geo.Coordinate
	radius   float64
	viewerID string
	selector geo.Selector
	log      *zap.Logger
	config   WebSocketConfig
	once     sync.Once
	done     chan struct{}
}

// FeedWebSocketHandler streams newly created feed posts that fall inside the
// client's radius. The observer is the viewer's profile location, else lat and
// lng from the query, else the default.
func FeedWebSocketHandler(log *zap.Logger, subscriber events.Subscriber, selector geo.Selector, locations LocationSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device, err := parseDevice(r)
		if err != nil {
			respondWithError(log, w, http.StatusBadRequest, err.Error(), err)
			return
		}

		radius, err := parseRadius(r)
		if err != nil {
			respondWithError(log, w, http.StatusBadRequest, err.Error(), err)
			return
		}

		viewerID := userID(r)
		observer := selector.ResolveObserver(profileLocation(r.Context(), log, locations, viewerID), device)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("Failed to upgrade to WebSocket", zap.Error(err))
			return
		}

		client := &feedClient{
			conn:     conn,
			send:     make(chan []byte, 64),
			observer: observer,
			radius:   selector.NormalizeRadius(radius),
			viewerID: viewerID,
			selector: selector,
			log:      log,
			config:   DefaultWebSocketConfig(),
			done:     make(chan struct{}),
		}

		// The welcome is queued first so it precedes any post
		welcome, _ := json.Marshal(map[string]interface{}{
			"type":     "welcome",
			"observer": client.observer,
			"radiusKm": client.radius,
			"time":     time.Now(),
		})
		client.enqueue(welcome)

		unsubscribe, err := subscriber.Subscribe(events.SubjectPostCreated, client.deliver)
		if err != nil {
			log.Error("Failed to subscribe to feed events", zap.Error(err))
			conn.Close()
			return
		}

		go client.writePump()
		go func() {
			client.readPump()
			unsubscribe()
		}()
	}
}

// profileLocation falls through to the device location on lookup errors
func profileLocation(ctx context.Context, log *zap.Logger, locations LocationSource, viewerID string) *geo.Coordinate {
	if viewerID == "" || locations == nil {
		return nil
	}

	loc, err := locations.Location(ctx, viewerID)
	if err != nil {
		log.Warn("Error loading profile location", zap.String("user_id", viewerID), zap.Error(err))
		return nil
	}
	return loc
}

// deliver forwards a post.created payload when the post belongs in this client's feed
func (c *feedClient) deliver(data []byte) {
	var p post.Post
	if err := json.Unmarshal(data, &p); err != nil {
		c.log.Warn("Dropping malformed feed event", zap.Error(err))
		return
	}

	if p.Type != post.TypeFeed || !p.VisibleTo(c.viewerID) {
		return
	}
	if !c.selector.Visible(c.observer, p.Coordinate(), c.radius) {
		return
	}

	msg, _ := json.Marshal(map[string]interface{}{
		"type": "post",
		"post": json.RawMessage(data),
	})
	c.enqueue(msg)
}

// enqueue drops the message when the client is slow or gone
func (c *feedClient) enqueue(msg []byte) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.log.Debug("Live feed client is behind, dropping message")
	}
}

// readPump discards client messages and detects disconnects
func (c *feedClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("WebSocket error", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps queued messages and pings to the connection
func (c *feedClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *feedClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
