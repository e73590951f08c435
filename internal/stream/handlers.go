package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/walks/:sessionID", websocket.New(func(c *websocket.Conn) {
		serve(hub, c, WalkChannel(c.Params("sessionID")))
	}))

	r.Get("/ws/users/:userID", websocket.New(func(c *websocket.Conn) {
		serve(hub, c, UserChannel(c.Params("userID")))
	}))
}

func serve(hub *Hub, c *websocket.Conn, channel string) {
	client := hub.Register(channel)
	defer hub.Unregister(client)

	done := make(chan struct{})
	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
		close(done)
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
	<-done
}
