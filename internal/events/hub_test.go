package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID       string `json:"id"`
	ExitCode int    `json:"exit_code"`
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	h := NewHub(10)
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(TypeRunExited, payload{ID: "run-1", ExitCode: 3})

	ev := <-ch
	assert.Equal(t, TypeRunExited, ev.Type)
	assert.Equal(t, int64(1), ev.Seq)

	var got payload
	require.NoError(t, ev.Decode(&got))
	assert.Equal(t, payload{ID: "run-1", ExitCode: 3}, got)
}

func TestCancelClosesAfterDrain(t *testing.T) {
	h := NewHub(10)
	ch, cancel := h.Subscribe()

	h.Publish(TypeRunLaunched, nil)
	h.Publish(TypeRunExited, nil)
	cancel()
	cancel() // idempotent

	var got []string
	for ev := range ch {
		got = append(got, ev.Type)
	}
	assert.Equal(t, []string{TypeRunLaunched, TypeRunExited}, got)

	// Publishing after cancel must not panic on the closed channel.
	h.Publish(TypeRunExited, nil)
}

func TestRecentKeepsNewest(t *testing.T) {
	h := NewHub(3)
	for range 5 {
		h.Publish(TypeRunExited, nil)
	}

	recent := h.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(3), recent[0].Seq)
	assert.Equal(t, int64(5), recent[2].Seq)

	assert.Len(t, h.Recent(4), 1)
	assert.Empty(t, h.Recent(5))
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(1)
	_, cancel := h.Subscribe()
	defer cancel()

	for range subscriberBacklog + 10 {
		h.Publish(TypeRunLaunched, nil)
	}
	assert.Len(t, h.Recent(0), 1)
}
