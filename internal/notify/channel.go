package notify

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier is the fire-and-forget side of the channel used by mutating operations.
type Notifier interface {
	Notify(level Level, title, message string) Notification
}

// Sink receives every notification synchronously. Deliver must not block.
type Sink interface {
	Deliver(n Notification)
}

type Channel struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Notification
	nextID uint64
	sinks  []Sink
	logger *log.Logger

	now func() time.Time
}

func NewChannel(logger *log.Logger) *Channel {
	if logger == nil {
		logger = log.Default()
	}
	return &Channel{
		subs:   make(map[uint64]chan Notification),
		logger: logger,
		now:    time.Now,
	}
}

func (c *Channel) AddSink(s Sink) {
	if c == nil || s == nil {
		return
	}
	c.mu.Lock()
	c.sinks = append(c.sinks, s)
	c.mu.Unlock()
}

// Subscribe returns a buffered feed of notifications and a function that ends the subscription.
// A subscriber whose buffer is full misses notifications rather than blocking the sender.
func (c *Channel) Subscribe(buffer int) (<-chan Notification, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Notification, buffer)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			close(ch)
			c.mu.Unlock()
		})
	}
	return ch, cancel
}

func (c *Channel) Notify(level Level, title, message string) Notification {
	n := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Title:   title,
		Message: message,
	}
	if c == nil {
		n.Timestamp = time.Now().UTC()
		return n
	}
	n.Timestamp = c.now().UTC()

	c.mu.RLock()
	defer c.mu.RUnlock()

	dropped := 0
	for _, ch := range c.subs {
		select {
		case ch <- n:
		default:
			dropped++
		}
	}
	for _, s := range c.sinks {
		s.Deliver(n)
	}

	c.logger.Printf("notify | id=%s level=%s title=%q subscribers=%d dropped=%d", n.ID, n.Level, n.Title, len(c.subs), dropped)
	return n
}

func (c *Channel) Success(title, message string) Notification {
	return c.Notify(LevelSuccess, title, message)
}

func (c *Channel) Error(title, message string) Notification {
	return c.Notify(LevelError, title, message)
}

func (c *Channel) Warning(title, message string) Notification {
	return c.Notify(LevelWarning, title, message)
}

func (c *Channel) Info(title, message string) Notification {
	return c.Notify(LevelInfo, title, message)
}
