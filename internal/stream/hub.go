package stream

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Hub fans out live events to websocket clients grouped by channel.
// Channels are "walk:{sessionID}" for live walk updates and
// "user:{userID}" for notifications and profile changes. A redis
// pub/sub bridge propagates events across instances when configured.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Channel string
	Send    chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func WalkChannel(sessionID string) string { return "walk:" + sessionID }
func UserChannel(userID string) string    { return "user:" + userID }

func (h *Hub) Register(channel string) *Client {
	client := &Client{
		Channel: channel,
		Send:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[channel] == nil {
		h.clients[channel] = map[*Client]struct{}{}
	}
	h.clients[channel][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if channelClients, ok := h.clients[client.Channel]; ok {
		delete(channelClients, client)
		if len(channelClients) == 0 {
			delete(h.clients, client.Channel)
		}
	}
	close(client.Send)
}

func (h *Hub) Broadcast(channel string, payload []byte) {
	h.deliver(channel, payload)

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(channel), payload).Err()
		if err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("redis publish failed")
		}
	}
}

func (h *Hub) deliver(channel string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[channel]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "live:*")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(channelFromRedis(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(channel string) string {
	return "live:" + channel
}

func channelFromRedis(ch string) string {
	return strings.TrimPrefix(ch, "live:")
}
