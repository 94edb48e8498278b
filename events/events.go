package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"ohtopup/game"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeGamePlayed      EventType = "game_played"
	EventTypeLargeWin        EventType = "large_win"
	EventTypeSettingsChanged EventType = "settings_changed"
	EventTypeUserCreated     EventType = "user_created"
	EventTypeRiskCapTripped  EventType = "risk_cap_tripped"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// GamePlayedEvent records a completed dice play
type GamePlayedEvent struct {
	UserID     int64
	RecordID   string
	Difficulty game.Difficulty
	BetAmount  float64
	IsWin      bool
	Payout     float64
	NewBalance float64
}

func (e GamePlayedEvent) Type() EventType {
	return EventTypeGamePlayed
}

// LargeWinEvent fires when a payout crosses the configured alert threshold
type LargeWinEvent struct {
	UserID    int64
	Username  string
	BetAmount float64
	Payout    float64
	Threshold float64
}

func (e LargeWinEvent) Type() EventType {
	return EventTypeLargeWin
}

// SettingsChangedEvent records an admin settings change
type SettingsChangedEvent struct {
	AdminID int64
	Action  string
}

func (e SettingsChangedEvent) Type() EventType {
	return EventTypeSettingsChanged
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	UserID         int64
	Username       string
	InitialBalance float64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// RiskCapTrippedEvent fires when an hourly exposure cap is exceeded
type RiskCapTrippedEvent struct {
	UserID int64
	Cap    string
	Amount float64
	Limit  float64
}

func (e RiskCapTrippedEvent) Type() EventType {
	return EventTypeRiskCapTripped
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission so handlers outlive the
	// transaction context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
