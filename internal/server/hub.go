// Package server coordinates client registration, event dispatch, and
// connection cleanup for the roomchat WebSocket system via the Hub type.
package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomchat/internal/chat"
)

type hubEventKind int

const (
	hubConnect hubEventKind = iota
	hubFrame
	hubDisconnect
)

// hubEvent is one unit of work for the hub loop. Connects, frames and
// disconnects share a single queue so that each connection's events are
// applied in the order they were read.
type hubEvent struct {
	kind   hubEventKind
	client *Client
	frame  InboundFrame
}

// Hub owns every WebSocket client and is the only goroutine that calls into
// the chat router. Broadcasts computed by the router are delivered from the
// same loop without blocking.
type Hub struct {
	router  *chat.Router
	metrics *Metrics
	log     zerolog.Logger

	maxMessageSize int64
	floodBurst     int
	floodInterval  time.Duration

	clients map[chat.ConnID]*Client
	events  chan hubEvent
	mutex   sync.RWMutex
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewHub creates a hub serving router. The returned Hub is ready to accept
// clients once Run is started.
func NewHub(router *chat.Router, cfg *Config, metrics *Metrics, logger zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		router:         router,
		metrics:        metrics,
		log:            logger.With().Str("component", "hub").Logger(),
		maxMessageSize: cfg.MaxMessageSize,
		floodBurst:     cfg.FloodBurst,
		floodInterval:  cfg.FloodRefillInterval,
		clients:        make(map[chat.ConnID]*Client),
		events:         make(chan hubEvent, 256),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
}

// ClientCount returns the number of clients currently attached to the hub.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// enqueue hands an event to the hub loop. It reports false once the hub is
// shutting down.
func (h *Hub) enqueue(ev hubEvent) bool {
	select {
	case h.events <- ev:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Run starts the hub's main event loop. It returns after Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)
	h.log.Info().Msg("hub started")

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case ev := <-h.events:
			switch ev.kind {
			case hubConnect:
				h.addClient(ev.client)
			case hubFrame:
				h.handleFrame(ev.client, ev.frame)
			case hubDisconnect:
				h.removeClient(ev.client)
			}
		}
	}
}

func (h *Hub) addClient(client *Client) {
	if client == nil {
		h.log.Warn().Msg("received nil client registration; skipping")
		return
	}

	h.mutex.Lock()
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()

	h.router.Connect(client.id)
	h.updatePopulation()
	h.log.Info().Str("conn", string(client.id)).Str("remote", client.addr).
		Int("clients", clientCount).Msg("client connected")

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// removeClient detaches a client and runs the router's disconnect path.
// Removing a client twice is harmless.
func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client.id]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.id)
	clientCount := len(h.clients)
	h.mutex.Unlock()

	close(client.send)
	h.log.Info().Str("conn", string(client.id)).Str("remote", client.addr).
		Int("clients", clientCount).Msg("client disconnected")

	out := h.router.Disconnect(client.id)
	h.updatePopulation()
	h.deliver(out.Broadcasts)
}

func (h *Hub) handleFrame(client *Client, f InboundFrame) {
	h.mutex.RLock()
	_, attached := h.clients[client.id]
	h.mutex.RUnlock()
	if !attached {
		return
	}

	out := h.dispatch(client.id, f)
	h.metrics.observeEvent(f.Event, out)
	h.updatePopulation()

	if out.Err != nil {
		h.log.Debug().Str("conn", string(client.id)).Str("event", f.Event).Err(out.Err).Msg("event rejected")
	}

	replied := true
	if f.Ack != nil && out.Reply != nil {
		replied = h.reply(client, f.Ack, out.Reply)
	}

	// The outcome's broadcasts go out before a failed sender is removed, so
	// its disconnect broadcasts always follow them.
	h.deliver(out.Broadcasts)
	if !replied {
		h.log.Warn().Str("conn", string(client.id)).Str("remote", client.addr).
			Msg("client removed due to full send buffer")
		h.removeClient(client)
	}
}

// reply queues the ack frame for client. It reports false when the client's
// send buffer is full.
func (h *Hub) reply(client *Client, ack *int64, reply any) bool {
	payload, err := json.Marshal(OutboundFrame{Event: eventAck, Ack: ack, Data: reply})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode reply")
		return true
	}
	return h.safeSend(client, payload)
}

// deliver fans out broadcasts to their recipients. Recipients whose send
// buffer is full are dropped, which may produce further broadcasts.
func (h *Hub) deliver(broadcasts []chat.Broadcast) {
	var failed []*Client

	for _, b := range broadcasts {
		payload, err := json.Marshal(OutboundFrame{Event: b.Event, Data: b.Payload})
		if err != nil {
			h.log.Error().Err(err).Str("event", b.Event).Msg("failed to encode broadcast")
			continue
		}

		h.log.Debug().Str("event", b.Event).Int("recipients", len(b.To)).Msg("broadcasting")
		for _, id := range b.To {
			h.mutex.RLock()
			client, ok := h.clients[id]
			h.mutex.RUnlock()
			if !ok {
				continue
			}
			if !h.safeSend(client, payload) {
				failed = append(failed, client)
			}
		}
	}

	for _, client := range failed {
		h.log.Warn().Str("conn", string(client.id)).Str("remote", client.addr).
			Msg("client removed due to full send buffer")
		h.removeClient(client)
	}
}

// safeSend queues a message without blocking. Only the hub loop closes
// send channels, so a client found in the map has an open channel.
func (h *Hub) safeSend(client *Client, message []byte) bool {
	h.mutex.RLock()
	_, exists := h.clients[client.id]
	h.mutex.RUnlock()
	if !exists {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

func (h *Hub) updatePopulation() {
	connections, users := h.router.Stats()
	h.metrics.setPopulation(connections, users)
}

// shutdownClients closes every connection. Their read pumps exit without
// reaching the hub, so the router is cleared directly.
func (h *Hub) shutdownClients() {
	h.log.Info().Msg("shutting down all client connections")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	clear(h.clients)
	h.mutex.Unlock()

	for _, client := range clients {
		close(client.send)
		if client.conn != nil {
			if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
				h.log.Error().Err(err).Str("remote", client.addr).Msg("error closing client connection")
			}
		}
	}

	h.router.Reset()
	h.updatePopulation()
	h.log.Info().Int("clients", len(clients)).Msg("closed client connections")
}

// Shutdown stops the hub loop, closes all clients and waits for their
// goroutines, or for ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.log.Info().Msg("initiating hub shutdown")

	h.cancel()
	select {
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info().Msg("hub shutdown completed")
		return nil
	case <-ctx.Done():
		h.log.Warn().Msg("hub shutdown timeout reached, some goroutines may still be running")
		return ctx.Err()
	}
}
