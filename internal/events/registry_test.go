package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Unmarshal(t *testing.T) {
	registry := NewRegistry()
	registry.Register(EventImportCreated, func() Event { return &ImportCreated{} })

	raw := RawEvent{
		EventType: EventImportCreated,
		Payload:   `{"type":"import.created","entity_type":"import","entity_id":42,"occurred_at":"2024-01-01T00:00:00Z","importId":42,"fileName":"heroes.csv","format":"CSV","userName":"alice"}`,
	}

	event, err := registry.Unmarshal(raw)
	require.NoError(t, err)

	created, ok := event.(*ImportCreated)
	require.True(t, ok)
	assert.Equal(t, int64(42), created.ImportID)
	assert.Equal(t, "heroes.csv", created.FileName)
	assert.Equal(t, "alice", created.Owner)
	assert.Equal(t, int64(42), created.EntityID())
}

func TestRegistry_UnmarshalUnknownType(t *testing.T) {
	registry := NewRegistry()

	raw := RawEvent{
		EventType: "unknown.event",
		Payload:   `{}`,
	}

	_, err := registry.Unmarshal(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestRegistry_UnmarshalInvalidJSON(t *testing.T) {
	registry := NewRegistry()
	registry.Register(EventImportCreated, func() Event { return &ImportCreated{} })

	raw := RawEvent{
		EventType: EventImportCreated,
		Payload:   `{not json`,
	}

	_, err := registry.Unmarshal(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal event payload")
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()

	types := []string{
		EventImportCreated,
		EventImportProgress,
		EventImportCompleted,
		EventImportFailed,
		EventHistoryCleared,
		EventHumanCreated,
	}

	for _, eventType := range types {
		t.Run(eventType, func(t *testing.T) {
			_, ok := registry.factories[eventType]
			assert.True(t, ok, "event type %s should be registered", eventType)
		})
	}
}

func TestRegistry_UnmarshalImportFailed(t *testing.T) {
	registry := DefaultRegistry()

	raw := RawEvent{
		EventType: EventImportFailed,
		Payload:   `{"type":"import.failed","entity_type":"import","entity_id":3,"occurred_at":"2024-01-01T00:00:00Z","importId":3,"status":"FAILED","processedRecords":2,"totalRecords":3,"successfulRecords":1,"failedRecords":1,"progress":66,"errorMessage":"mood is required"}`,
	}

	event, err := registry.Unmarshal(raw)
	require.NoError(t, err)

	failed, ok := event.(*ImportFailed)
	require.True(t, ok)
	assert.Equal(t, "FAILED", failed.Status)
	assert.Equal(t, 1, failed.Success)
	assert.Equal(t, 1, failed.Failed)
	assert.Equal(t, 66, failed.Percent)
	assert.Equal(t, "mood is required", failed.ErrorMessage)
}

func TestRegistry_RoundTripThroughLog(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)
	ctx := t.Context()

	_, err := log.Append(ctx, &HumanCreated{
		BaseEvent: NewBaseEvent(EventHumanCreated, EntityHuman, 9),
		HumanID:   9,
		Name:      "Alice",
		ImportID:  2,
	})
	require.NoError(t, err)

	raws, err := log.ForEntity(ctx, EntityHuman, 9)
	require.NoError(t, err)
	require.Len(t, raws, 1)

	event, err := DefaultRegistry().Unmarshal(raws[0])
	require.NoError(t, err)
	created, ok := event.(*HumanCreated)
	require.True(t, ok)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, int64(2), created.ImportID)
}
