package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOutToEverySubscriber(t *testing.T) {
	bus := New(nil)
	a := bus.Subscribe(TopicScheduleUpdated, 4)
	b := bus.Subscribe(TopicScheduleUpdated, 4)

	bus.Publish(TopicScheduleUpdated, map[string]any{"roomId": "room-1"})

	select {
	case evt := <-a:
		assert.Equal(t, TopicScheduleUpdated, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("subscriber a never received the event")
	}
	select {
	case evt := <-b:
		assert.Equal(t, TopicScheduleUpdated, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("subscriber b never received the event")
	}
}

func TestPublishIsScopedByTopic(t *testing.T) {
	bus := New(nil)
	scheduleCh := bus.Subscribe(TopicScheduleUpdated, 4)
	requestCh := bus.Subscribe(TopicRequestCreated, 4)

	bus.Publish(TopicRequestCreated, map[string]any{"roomId": "room-1"})

	select {
	case <-requestCh:
	case <-time.After(time.Second):
		t.Fatal("request-created subscriber never received the event")
	}
	select {
	case <-scheduleCh:
		t.Fatal("schedule-updated subscriber must not receive a request-created event")
	default:
	}
}

// Best-effort delivery: a full subscriber buffer drops the event instead
// of blocking the publisher.
func TestPublishDropsOnFullBuffer(t *testing.T) {
	bus := New(nil)
	ch := bus.Subscribe(TopicSuggestionUpdated, 1)

	bus.Publish(TopicSuggestionUpdated, "first")
	bus.Publish(TopicSuggestionUpdated, "second") // dropped, buffer already full

	require.Len(t, ch, 1)
	evt := <-ch
	assert.Equal(t, "first", evt.Payload)
	assert.Empty(t, ch)
}

func TestSubscribeDefaultsNonPositiveBufferSize(t *testing.T) {
	bus := New(nil)
	ch := bus.Subscribe(TopicRequestResolved, 0)
	assert.Equal(t, 16, cap(ch))
}
