package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edutec/disponibilidad-api/internal/models"
)

type feedSourceMock struct {
	events       chan models.ChangeEvent
	unsubscribed chan struct{}
}

func newFeedSourceMock() *feedSourceMock {
	return &feedSourceMock{
		events:       make(chan models.ChangeEvent, 8),
		unsubscribed: make(chan struct{}, 1),
	}
}

func (m *feedSourceMock) Subscribe(ctx context.Context) (<-chan models.ChangeEvent, func(), error) {
	return m.events, func() {
		select {
		case m.unsubscribed <- struct{}{}:
		default:
		}
	}, nil
}

func TestFeedServiceBroadcastsToAllClients(t *testing.T) {
	source := newFeedSourceMock()
	hub := NewFeedService(source, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	first, closeFirst := hub.Register()
	second, closeSecond := hub.Register()
	defer closeFirst()
	defer closeSecond()

	event := models.ChangeEvent{Accion: models.ChangeCreated, ID: "rec-1", Nombre: "Luis Rey"}
	source.events <- event

	for _, ch := range []<-chan models.ChangeEvent{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, event.ID, got.ID)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
}

func TestFeedServiceCancelDetachesClient(t *testing.T) {
	hub := NewFeedService(newFeedSourceMock(), 4, zap.NewNop())

	ch, cancel := hub.Register()
	require.Equal(t, 1, hub.Clients())

	cancel()
	assert.Equal(t, 0, hub.Clients())
	_, open := <-ch
	assert.False(t, open)

	// second cancel is a no-op
	cancel()
	assert.Equal(t, 0, hub.Clients())
}

func TestFeedServiceDropsEventsForSlowClients(t *testing.T) {
	source := newFeedSourceMock()
	hub := NewFeedService(source, 1, zap.NewNop())

	ch, cancel := hub.Register()
	defer cancel()

	hub.broadcast(models.ChangeEvent{ID: "rec-1"})
	hub.broadcast(models.ChangeEvent{ID: "rec-2"})

	got := <-ch
	assert.Equal(t, "rec-1", got.ID)
	select {
	case extra := <-ch:
		t.Fatalf("expected second event to be dropped, got %s", extra.ID)
	default:
	}
}

func TestFeedServiceClosesClientsWhenSubscriptionDrops(t *testing.T) {
	source := newFeedSourceMock()
	hub := NewFeedService(source, 4, zap.NewNop())
	hub.retryIn = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	ch, closeClient := hub.Register()
	defer closeClient()

	close(source.events)

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for client channel to close")
	}

	select {
	case <-source.unsubscribed:
	case <-time.After(time.Second):
		t.Fatal("upstream subscription was not released")
	}
}
