package helpers

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
)

// MockMediator is a test double for the Mediator interface. Without a send
// function every request fails; the type of each request is logged.
type MockMediator struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, request common.Request) (common.Response, error)
	callLog  []string
}

// NewMockMediator creates a new MockMediator
func NewMockMediator() *MockMediator {
	return &MockMediator{
		callLog: []string{},
	}
}

// Send implements the Mediator interface
func (m *MockMediator) Send(ctx context.Context, request common.Request) (common.Response, error) {
	m.mu.Lock()
	m.callLog = append(m.callLog, reflect.TypeOf(request).String())
	fn := m.sendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, request)
	}
	return nil, fmt.Errorf("unsupported request type: %T", request)
}

// SetSendFunc sets a custom function for Send calls
func (m *MockMediator) SetSendFunc(fn func(ctx context.Context, request common.Request) (common.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendFunc = fn
}

// GetCallLog returns the type names of the requests sent so far
func (m *MockMediator) GetCallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.callLog...)
}

// ClearCallLog clears the call log
func (m *MockMediator) ClearCallLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = []string{}
}

// Register implements the Mediator interface (no-op for tests)
func (m *MockMediator) Register(requestType reflect.Type, handler common.RequestHandler) error {
	return nil
}

// RegisterMiddleware implements the Mediator interface (no-op for tests)
func (m *MockMediator) RegisterMiddleware(middleware common.Middleware) {}

var _ common.Mediator = (*MockMediator)(nil)

// LogEntry is one line captured by RecordingLogger
type LogEntry struct {
	Level    string
	Message  string
	Metadata map[string]interface{}
}

// RecordingLogger captures log lines for assertions
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// Log implements common.EngineLogger
func (l *RecordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: message, Metadata: metadata})
}

// Messages returns the logged messages in order
func (l *RecordingLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Message
	}
	return out
}

// Entries returns a copy of the captured lines
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry{}, l.entries...)
}
