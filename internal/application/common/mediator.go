package common

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Request represents a command or query
type Request interface{}

// Response represents the result of handling a request
type Response interface{}

// RequestHandler handles a specific request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// Mediator dispatches administrative commands and queries to their handlers
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
	Register(requestType reflect.Type, handler RequestHandler) error
}

type mediator struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]RequestHandler
}

// NewMediator creates a new mediator instance
func NewMediator() Mediator {
	return &mediator{
		handlers: make(map[reflect.Type]RequestHandler),
	}
}

// Register registers a handler for a specific request type
func (m *mediator) Register(requestType reflect.Type, handler RequestHandler) error {
	if requestType == nil {
		return fmt.Errorf("request type cannot be nil")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.handlers[requestType]; exists {
		return fmt.Errorf("handler already registered for type %s", requestType)
	}
	m.handlers[requestType] = handler
	return nil
}

// Send dispatches a request to its registered handler.
// Failed requests are logged through the context logger before returning.
func (m *mediator) Send(ctx context.Context, request Request) (Response, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	requestType := reflect.TypeOf(request)
	m.mu.RLock()
	handler, ok := m.handlers[requestType]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no handler registered for type %s", requestType)
	}

	resp, err := handler.Handle(ctx, request)
	if err != nil {
		LoggerFromContext(ctx).Log(LevelError, "request failed", map[string]interface{}{
			"request": requestType.String(),
			"error":   err.Error(),
		})
	}
	return resp, err
}

// RegisterHandler registers handler for the request type T
func RegisterHandler[T Request](m Mediator, handler RequestHandler) error {
	var zero T
	return m.Register(reflect.TypeOf(zero), handler)
}
