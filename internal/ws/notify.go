package ws

import (
	"encoding/json"

	"hirepath/internal/notify"
)

const EventNotification = "notification"

type NotificationEvent struct {
	Type         string              `json:"type"`
	Notification notify.Notification `json:"notification"`
}

// Deliver makes Hub a notify.Sink: each notification becomes one broadcast frame.
func (h *Hub) Deliver(n notify.Notification) {
	if h == nil {
		return
	}
	b, err := json.Marshal(NotificationEvent{Type: EventNotification, Notification: n})
	if err != nil {
		h.logger.Printf("ws | encode error id=%s err=%v", n.ID, err)
		return
	}
	h.Broadcast(b)
}
