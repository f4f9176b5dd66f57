package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskRequestEvent(t *testing.T) {
	// Payload shape mirrors what a matching run request carries
	type testPayload struct {
		MaxRounds int       `json:"max_rounds"`
		StartedBy uuid.UUID `json:"started_by"`
	}

	payload := testPayload{
		MaxRounds: 3,
		StartedBy: uuid.New(),
	}

	eventType := "matching_run"
	event, err := NewTaskRequestEvent(eventType, payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, eventType, event.Type)
	assert.NotNil(t, event.Payload)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	// Verify payload round-trips through the event
	var decoded testPayload
	err = json.Unmarshal(event.Payload, &decoded)
	require.NoError(t, err)
	assert.Equal(t, payload.MaxRounds, decoded.MaxRounds)
	assert.Equal(t, payload.StartedBy, decoded.StartedBy)
}

func TestUnmarshalPayload(t *testing.T) {
	event, err := NewTaskRequestEvent("matching_run", map[string]int{"max_rounds": 5})
	require.NoError(t, err)

	var decoded map[string]int
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, 5, decoded["max_rounds"])
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *TaskRequestEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	handler := &MockEventHandler{}

	event, err := NewTaskRequestEvent("matching_run", map[string]string{"key": "value"})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	err = handler.HandleEvent(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 2, handler.HandledCount)
}
