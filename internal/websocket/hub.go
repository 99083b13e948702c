package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/eventbus"
)

// MembershipChecker is the narrow seam Hub uses to authorize a join,
// wired to services.CoordinationService.IsMember at construction.
type MembershipChecker interface {
	IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
}

// Hub maintains every room's connected clients and fans out the four
// C10 topics (schedule-updated, suggestion-updated, request-created,
// request-resolved) to whichever clients have joined that room.
type Hub struct {
	membership MembershipChecker
	logger     *slog.Logger

	roomsMu sync.RWMutex
	rooms   map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub builds a Hub and subscribes it to bus's C10 topics.
func NewHub(bus *eventbus.Bus, membership MembershipChecker, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		membership: membership,
		logger:     logger,
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}

	for _, topic := range []string{
		eventbus.TopicScheduleUpdated,
		eventbus.TopicSuggestionUpdated,
		eventbus.TopicRequestCreated,
		eventbus.TopicRequestResolved,
	} {
		go h.relay(topic, bus.Subscribe(topic, 32))
	}

	return h
}

// Run drives client (un)registration. Broadcasting happens on its own
// goroutine per subscribed topic via relay, so Run only needs to own the
// rooms map's membership changes.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addToRoom(c, c.roomID)
		case c := <-h.unregister:
			h.removeFromRoom(c, c.roomID)
			close(c.send)
		}
	}
}

// Stop tears down the hub's event-relay goroutines.
func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) relay(topic string, events <-chan eventbus.Event) {
	for {
		select {
		case <-h.ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			roomID, ok := roomIDFromPayload(evt.Payload)
			if !ok {
				h.logger.Warn("websocket: event payload missing roomId", "topic", topic)
				continue
			}
			h.broadcast(roomID, WSMessage{
				Type:      MessageTypeEvent,
				Event:     topic,
				RoomID:    &roomID,
				Data:      evt.Payload,
				Timestamp: evt.At,
			})
		}
	}
}

func roomIDFromPayload(payload any) (uuid.UUID, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return uuid.Nil, false
	}
	raw, ok := m["roomId"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *Hub) broadcast(roomID uuid.UUID, msg WSMessage) {
	h.roomsMu.RLock()
	clients := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.roomsMu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("websocket: client send buffer full, dropping event", "roomId", roomID)
		}
	}
}

func (h *Hub) addToRoom(c *Client, roomID uuid.UUID) {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
}

func (h *Hub) removeFromRoom(c *Client, roomID uuid.UUID) {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	delete(h.rooms[roomID], c)
	if len(h.rooms[roomID]) == 0 {
		delete(h.rooms, roomID)
	}
}

// CanJoin authorizes a client's join via the injected MembershipChecker.
func (h *Hub) CanJoin(ctx context.Context, roomID, userID uuid.UUID) bool {
	ok, err := h.membership.IsMember(ctx, roomID, userID)
	return err == nil && ok
}

// Stats reports room occupancy for monitoring.
func (h *Hub) Stats() map[uuid.UUID]int {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	stats := make(map[uuid.UUID]int, len(h.rooms))
	for roomID, clients := range h.rooms {
		stats[roomID] = len(clients)
	}
	return stats
}
