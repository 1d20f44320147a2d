package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/edutec/disponibilidad-api/internal/models"
)

type feedSource interface {
	Subscribe(ctx context.Context) (<-chan models.ChangeEvent, func(), error)
}

// FeedService fans roster change events out to connected live-view
// clients. A single upstream subscription feeds every client; slow
// clients lose events rather than stalling the hub.
type FeedService struct {
	source  feedSource
	logger  *zap.Logger
	buffer  int
	retryIn time.Duration

	mu      sync.Mutex
	clients map[chan models.ChangeEvent]struct{}
}

// NewFeedService builds the hub. buffer is the per-client channel
// capacity.
func NewFeedService(source feedSource, buffer int, logger *zap.Logger) *FeedService {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedService{
		source:  source,
		logger:  logger,
		buffer:  buffer,
		retryIn: 5 * time.Second,
		clients: make(map[chan models.ChangeEvent]struct{}),
	}
}

// Run consumes the upstream subscription until ctx is cancelled. When
// the subscription drops, connected clients are closed so they can
// reconnect, and the hub resubscribes after a short pause.
func (s *FeedService) Run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil {
			s.logger.Error("feed subscription failed", zap.Error(err))
		}
		s.closeAll()

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryIn):
		}
	}
}

func (s *FeedService) consume(ctx context.Context) error {
	events, unsubscribe, err := s.source.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			s.broadcast(event)
		}
	}
}

// Register attaches a new client. The returned cancel func must be
// called when the client disconnects; it detaches and drains the
// client channel.
func (s *FeedService) Register() (<-chan models.ChangeEvent, func()) {
	ch := make(chan models.ChangeEvent, s.buffer)

	s.mu.Lock()
	s.clients[ch] = struct{}{}
	count := len(s.clients)
	s.mu.Unlock()
	s.logger.Debug("feed client connected", zap.Int("clients", count))

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.clients[ch]; ok {
			delete(s.clients, ch)
			close(ch)
		}
		count := len(s.clients)
		s.mu.Unlock()
		s.logger.Debug("feed client disconnected", zap.Int("clients", count))
	}
	return ch, cancel
}

// Clients reports the number of attached clients.
func (s *FeedService) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *FeedService) broadcast(event models.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- event:
		default:
			s.logger.Warn("feed client buffer full, event dropped",
				zap.String("accion", string(event.Accion)),
				zap.String("id", event.ID))
		}
	}
}

func (s *FeedService) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		delete(s.clients, ch)
		close(ch)
	}
}
