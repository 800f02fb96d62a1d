package service

import (
	"sync"

	"discspec/internal/domain"
)

// Event is a job lifecycle notification consumed by the SSE handler.
type Event struct {
	JobID   int64            `json:"job_id"`
	Status  domain.JobStatus `json:"status"`
	SpecID  string           `json:"spec_id,omitempty"`
	Message string           `json:"message,omitempty"`
}

type EventBus struct {
	subscribers map[int64][]chan Event
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[int64][]chan Event),
	}
}

func (eb *EventBus) Subscribe(jobID int64) chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, 16)
	eb.subscribers[jobID] = append(eb.subscribers[jobID], ch)
	return ch
}

func (eb *EventBus) Unsubscribe(jobID int64, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[jobID]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[jobID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(eb.subscribers[jobID]) == 0 {
		delete(eb.subscribers, jobID)
	}
}

func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[event.JobID] {
		select {
		case ch <- event:
		default:
			// Drop event if subscriber is slow
		}
	}
}
