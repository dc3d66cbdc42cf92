package notifications

import (
	"sync"
	"time"
)

// EventType represents the type of notification event
type EventType string

const (
	EventDashboardChanged EventType = "dashboard-changed"
	EventDisplaySynced    EventType = "display-synced"
	EventConnected        EventType = "connected"
)

// Sections reported with EventDashboardChanged
const (
	SectionTodos    = "todos"
	SectionWeather  = "weather"
	SectionStocks   = "stocks"
	SectionExternal = "external" // data file edited outside the service
)

// Event represents a notification event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Service manages SSE subscriptions and event broadcasting
type Service struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	closed      bool
}

// NewService creates a new notification service
func NewService() *Service {
	return &Service{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe creates a new subscription channel
// Returns the event channel and an unsubscribe function
func (s *Service) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 10)

	s.mu.Lock()
	if s.closed {
		close(ch)
	} else {
		s.subscribers[ch] = struct{}{}
	}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Only close if the channel is still in subscribers map
		if _, exists := s.subscribers[ch]; exists {
			delete(s.subscribers, ch)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Notify broadcasts an event to all subscribers
func (s *Service) Notify(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// NotifyDashboardChanged sends a dashboard-changed event for one section
func (s *Service) NotifyDashboardChanged(section string) {
	s.Notify(Event{
		Type: EventDashboardChanged,
		Data: map[string]any{
			"section": section,
		},
	})
}

// NotifyDisplaySynced sends a display-synced event
func (s *Service) NotifyDisplaySynced(screenID string, ok bool, stage string) {
	s.Notify(Event{
		Type: EventDisplaySynced,
		Data: map[string]any{
			"screenId": screenID,
			"ok":       ok,
			"stage":    stage,
		},
	})
}

// Shutdown closes all subscriber channels
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = make(map[chan Event]struct{})
}

// SubscriberCount returns the number of active subscribers
func (s *Service) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
