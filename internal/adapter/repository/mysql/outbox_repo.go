package mysql

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	db, err := dbFor(ctx, r.db, tx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	return db.Create(&outboxEventModel{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     event.CreatedAt,
		Published:     event.Published,
	}).Error
}

func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var models []outboxEventModel
	err := r.db.WithContext(ctx).
		Where("published = ?", false).
		Order("created_at").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	events := make([]*domain.OutboxEvent, 0, len(models))
	for i := range models {
		m := &models[i]

		var payload map[string]any
		if m.Payload != nil {
			_ = json.Unmarshal(m.Payload, &payload)
		}

		events = append(events, &domain.OutboxEvent{
			ID:            m.ID,
			AggregateID:   m.AggregateID,
			AggregateType: m.AggregateType,
			EventType:     m.EventType,
			Payload:       payload,
			CreatedAt:     m.CreatedAt,
			PublishedAt:   m.PublishedAt,
			Published:     m.Published,
		})
	}

	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&outboxEventModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"published": true, "published_at": publishedAt}).Error
}

func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.db.WithContext(ctx).
		Where("published = ? AND published_at < ?", true, before).
		Delete(&outboxEventModel{}).Error
}
