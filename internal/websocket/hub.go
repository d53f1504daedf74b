package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"mini-shop-be/internal/entity"
	"mini-shop-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "topup_ws_events"

// roomBroadcast targets every connected client, identified or not.
const roomBroadcast = "*"

// PaymentLister provides the one-shot payments_list reply for inbound
// get_payments frames. Implemented by the payment store.
type PaymentLister interface {
	List() []*entity.Payment
}

// Frame is the wire shape of every websocket message, both directions.
type Frame struct {
	Event    string          `json:"event"`
	PlayerId string          `json:"playerId,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Hub tracks connected clients and their player rooms. Broadcasts go to
// everyone; room sends reach only clients that identified themselves
// under that player id. A Redis pub/sub channel fans events out to
// other instances; the hub works fine with a nil Redis client.
type Hub struct {
	// All connected clients.
	clients map[*Client]bool

	// Player room membership: playerId -> clients.
	rooms map[string]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fanout
	rdb *redis.Client

	// Distinguishes our own Redis messages from other instances'.
	instanceId string

	// Serves payments_list replies.
	payments PaymentLister

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, payments PaymentLister, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		payments:   payments,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.Id})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.leaveRoomLocked(client)
				close(client.Send)
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"client_id": client.Id})
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event to ALL connected clients.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload := marshalFrame(event, data)

	h.mu.RLock()
	for client := range h.clients {
		h.deliverLocked(client, payload)
	}
	h.mu.RUnlock()

	h.publishToRedis(roomBroadcast, payload)
}

// ToPlayer sends an event only to clients identified under playerId.
func (h *Hub) ToPlayer(playerId, event string, data interface{}) {
	payload := marshalFrame(event, data)

	h.mu.RLock()
	for client := range h.rooms[playerId] {
		h.deliverLocked(client, payload)
	}
	h.mu.RUnlock()

	h.publishToRedis(playerId, payload)
}

// identify moves a client into the player room it claims.
func (h *Hub) identify(client *Client, playerId string) {
	if playerId == "" {
		return
	}

	h.mu.Lock()
	h.leaveRoomLocked(client)
	if h.rooms[playerId] == nil {
		h.rooms[playerId] = make(map[*Client]bool)
	}
	h.rooms[playerId][client] = true
	client.PlayerId = playerId
	h.mu.Unlock()

	h.logger.Info("Hub", "Client joined player room", map[string]interface{}{"client_id": client.Id, "player_id": playerId})
}

// handleInbound processes one frame read off a client connection.
func (h *Hub) handleInbound(client *Client, frame Frame) {
	switch frame.Event {
	case "identify":
		playerId := frame.PlayerId
		if playerId == "" && len(frame.Data) > 0 {
			// Older clients send the player id as the data payload.
			_ = json.Unmarshal(frame.Data, &playerId)
		}
		h.identify(client, playerId)

	case "get_payments":
		var list interface{} = []*entity.Payment{}
		if h.payments != nil {
			list = h.payments.List()
		}
		payload := marshalFrame("payments_list", list)
		h.mu.RLock()
		h.deliverLocked(client, payload)
		h.mu.RUnlock()

	default:
		h.logger.Warn("Hub", "Unknown inbound event", map[string]interface{}{"event": frame.Event})
	}
}

// deliverLocked pushes a payload to one client, dropping it if the
// client's buffer is full. Callers hold at least the read lock.
func (h *Hub) deliverLocked(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"client_id": client.Id})
		go func() { h.unregister <- client }()
	}
}

func (h *Hub) leaveRoomLocked(client *Client) {
	if client.PlayerId == "" {
		return
	}
	if room, ok := h.rooms[client.PlayerId]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.PlayerId)
		}
	}
	client.PlayerId = ""
}

type clusterPayload struct {
	Origin  string          `json:"origin"`
	Room    string          `json:"room"`
	Message json.RawMessage `json:"message"`
}

func (h *Hub) publishToRedis(room string, payload []byte) {
	if h.rdb == nil {
		return
	}
	jsonPayload, _ := json.Marshal(clusterPayload{
		Origin:  h.instanceId,
		Room:    room,
		Message: payload,
	})
	if err := h.rdb.Publish(context.Background(), clusterChannel, jsonPayload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
			continue
		}

		// Our own publishes already went to local clients.
		if payload.Origin == h.instanceId {
			continue
		}

		h.mu.RLock()
		if payload.Room == roomBroadcast {
			for client := range h.clients {
				h.deliverLocked(client, payload.Message)
			}
		} else {
			for client := range h.rooms[payload.Room] {
				h.deliverLocked(client, payload.Message)
			}
		}
		h.mu.RUnlock()
	}
}

func marshalFrame(event string, data interface{}) []byte {
	raw, _ := json.Marshal(data)
	payload, _ := json.Marshal(Frame{Event: event, Data: raw})
	return payload
}
