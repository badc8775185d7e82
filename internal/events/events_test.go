package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeEvent(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(MakeEvent("req-1", SourceDone, 1, map[string]int{"records": 3})), &e))
	assert.Equal(t, SourceDone, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.JSONEq(t, `{"records":3}`, string(e.Data))
	assert.False(t, e.At.IsZero())
}

func TestHubFanOutAndDrop(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	assert.Equal(t, 2, h.Clients())

	h.Emit("", RunStarted, nil)
	assert.Contains(t, <-a, RunStarted)
	assert.Contains(t, <-b, RunStarted)

	// b stops reading; its buffer fills and Publish must not block.
	for i := 0; i < 50; i++ {
		h.Publish("x")
	}
	assert.Len(t, b, cap(b))

	h.Unsubscribe(b)
	h.Unsubscribe(b)
	assert.Equal(t, 1, h.Clients())
	_, open := <-a
	assert.True(t, open)
}

func TestNilHubEmit(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() { h.Emit("", RunFinished, nil) })
}
