// internal/handler/event_bus.go
package handler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"meter-print-service/internal/model"
)

// allEvents subscribes to every event type
const allEvents model.EventType = "*"

// EventBus fans printer events out to subscribers
type EventBus struct {
	subscribers map[model.EventType][]chan model.PrinterEvent
	events      chan model.PrinterEvent
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[model.EventType][]chan model.PrinterEvent),
		events:      make(chan model.PrinterEvent, 1000),
		logger:      logger.With(zap.String("component", "event_bus")),
	}
}

// Start distributes events until ctx is done
func (eb *EventBus) Start(ctx context.Context) {
	for {
		select {
		case event := <-eb.events:
			eb.distributeEvent(event)
		case <-ctx.Done():
			return
		}
	}
}

// PublishPrinterEvent queues an event; it never blocks the caller
func (eb *EventBus) PublishPrinterEvent(event model.PrinterEvent) {
	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", string(event.EventType)),
		)
	}
}

// Subscribe subscribes to events of a specific type
func (eb *EventBus) Subscribe(eventType model.EventType) <-chan model.PrinterEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan model.PrinterEvent, 100)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// SubscribeAll subscribes to every event
func (eb *EventBus) SubscribeAll() <-chan model.PrinterEvent {
	return eb.Subscribe(allEvents)
}

func (eb *EventBus) distributeEvent(event model.PrinterEvent) {
	eb.mutex.RLock()
	subscribers := append([]chan model.PrinterEvent{}, eb.subscribers[event.EventType]...)
	subscribers = append(subscribers, eb.subscribers[allEvents]...)
	eb.mutex.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			// slow subscriber
		}
	}
}
