package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseEvent_ImplementsEvent(t *testing.T) {
	now := time.Now()
	e := BaseEvent{
		Type:      "test.event",
		Entity:    EntityImport,
		ID:        42,
		Timestamp: now,
	}

	assert.Equal(t, "test.event", e.EventType())
	assert.Equal(t, EntityImport, e.EntityType())
	assert.Equal(t, int64(42), e.EntityID())
	assert.Equal(t, now, e.OccurredAt())
}

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent(EventImportCreated, EntityImport, 123)

	assert.Equal(t, EventImportCreated, e.EventType())
	assert.Equal(t, EntityImport, e.EntityType())
	assert.Equal(t, int64(123), e.EntityID())
	assert.False(t, e.OccurredAt().IsZero())
}

func TestProgressEventConstructors(t *testing.T) {
	p := Progress{ImportID: 5, Status: "RUNNING", Processed: 1, Total: 4, Success: 1, Percent: 25}

	tick := NewImportProgressed(p)
	assert.Equal(t, EventImportProgress, tick.EventType())
	assert.Equal(t, int64(5), tick.EntityID())

	assert.Equal(t, EventImportCompleted, NewImportCompleted(p).EventType())
	assert.Equal(t, EventImportFailed, NewImportFailed(p).EventType())
}

func TestImportProgressed_JSONFlattensProgress(t *testing.T) {
	b, err := json.Marshal(NewImportProgressed(Progress{ImportID: 5, Processed: 2, Total: 4, Percent: 50}))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "import.progress", m["type"])
	assert.EqualValues(t, 5, m["importId"])
	assert.EqualValues(t, 50, m["progress"])
	assert.NotContains(t, m, "errorMessage")
}
