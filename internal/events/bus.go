package events

import (
	"sync"

	"go.uber.org/zap"
)

// Event names published by the core services.
const (
	UserRegistered       = "user_registered"
	PaymentCompleted     = "payment_completed"
	MembershipActivated  = "membership_activated"
	CreditPurchased      = "credit_purchased"
	CashPaymentSubmitted = "cash_payment_submitted"
)

// Payload carries primitive identifiers only, never whole records, so
// subscribers can be swapped without the core knowing their implementation.
type Payload struct {
	UserID    uint
	PaymentID uint
	Quantity  int
}

type Handler func(event string, payload Payload)

// Bus is a synchronous publish/subscribe fabric. Handlers run inline in the
// publisher's goroutine but inside their own fault boundary: a panicking or
// failing handler is logged and swallowed, never propagated to the caller.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Publish is fire-and-forget relative to the caller's transaction: it must
// be called after the ledger write has committed, and no handler outcome
// can affect the caller.
func (b *Bus) Publish(event string, payload Payload) {
	b.mu.RLock()
	handlers := b.handlers[event]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.invoke(event, payload, handler)
	}
}

func (b *Bus) invoke(event string, payload Payload, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event", event),
				zap.Uint("user_id", payload.UserID),
				zap.Any("panic", r),
			)
		}
	}()
	handler(event, payload)
}
