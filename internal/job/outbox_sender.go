package job

import (
	"context"
	"log"
	"time"

	"salonemart/internal/models"
	"salonemart/internal/repository"
	"salonemart/pkg/events"
)

// OutboxSender drains the transactional outbox to kafka. Events are written
// to the outbox in the same transaction as the state change they describe,
// so publishing is at-least-once and consumers must dedupe on event key.
type OutboxSender struct {
	outboxRepo *repository.OutboxRepository
	producer   *events.Producer
	interval   time.Duration
	batchSize  int
	maxRetries int
}

func NewOutboxSender(outboxRepo *repository.OutboxRepository, producer *events.Producer, maxRetries int) *OutboxSender {
	return &OutboxSender{
		outboxRepo: outboxRepo,
		producer:   producer,
		interval:   500 * time.Millisecond,
		batchSize:  100,
		maxRetries: maxRetries,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	log.Println("[OutboxSender] started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OutboxSender] stopped")
			return
		case <-ticker.C:
			s.drain()
		}
	}
}

func (s *OutboxSender) drain() {
	pending, err := s.outboxRepo.GetPending(s.batchSize)
	if err != nil {
		log.Printf("[OutboxSender] fetch pending: %v", err)
		return
	}
	for i := range pending {
		s.send(&pending[i])
	}
}

func (s *OutboxSender) send(evt *models.OutboxEvent) {
	err := s.producer.Send(evt.Topic, evt.EventKey, evt.Payload)
	if err == nil {
		if markErr := s.outboxRepo.MarkSent(evt.ID); markErr != nil {
			log.Printf("[OutboxSender] mark sent id=%d: %v", evt.ID, markErr)
		}
		return
	}

	log.Printf("[OutboxSender] send id=%d topic=%s: %v", evt.ID, evt.Topic, err)
	if err := s.outboxRepo.IncrementRetry(evt.ID); err != nil {
		log.Printf("[OutboxSender] increment retry id=%d: %v", evt.ID, err)
	}
	if evt.RetryCount+1 >= s.maxRetries {
		if err := s.outboxRepo.MarkFailed(evt.ID); err != nil {
			log.Printf("[OutboxSender] mark failed id=%d: %v", evt.ID, err)
		} else {
			log.Printf("[OutboxSender] id=%d exceeded %d retries, marked failed", evt.ID, s.maxRetries)
		}
	}
}
