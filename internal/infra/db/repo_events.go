package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/usecase"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const eventSeqRowID = 1

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append assigns the next chain position under a row lock, hashes the
// canonical payload, and links the event to its predecessor. It must run
// inside the caller's transaction so the event commits with the mutation it
// records.
func (r *EventRepository) Append(ctx context.Context, event domain.Event) (domain.Event, error) {
	if r.db == nil {
		return domain.Event{}, errDBUnavailable
	}
	if event.EventType == "" {
		return domain.Event{}, errors.New("event_type is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.CreatedAt = event.CreatedAt.UTC().Truncate(time.Microsecond)
	if event.Payload == nil {
		event.Payload = map[string]any{}
	}

	payloadJSON, err := CanonicalizeAny(event.Payload)
	if err != nil {
		return domain.Event{}, err
	}
	sum := sha256.Sum256(payloadJSON)
	event.PayloadHash = hex.EncodeToString(sum[:])

	seq, prevHash, err := r.nextEventSeq(ctx)
	if err != nil {
		return domain.Event{}, err
	}
	event.Seq = seq
	event.PrevEventHash = prevHash

	eventHash, err := usecase.ComputeEventChainHash(event)
	if err != nil {
		return domain.Event{}, err
	}
	event.EventHash = eventHash

	model := EventModel{
		ID:            event.ID,
		Seq:           event.Seq,
		EventType:     string(event.EventType),
		PayloadJSON:   payloadJSON,
		PayloadHash:   event.PayloadHash,
		PrevEventHash: event.PrevEventHash,
		EventHash:     event.EventHash,
		CreatedAt:     event.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Event{}, err
	}
	event.Payload = payloadJSON
	return event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []EventModel
	if err := r.db.WithContext(ctx).
		Order("seq ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(models))
	for _, model := range models {
		canonical, err := CanonicalizeJSON(model.PayloadJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Event{
			ID:            model.ID,
			Seq:           model.Seq,
			EventType:     domain.EventType(model.EventType),
			Payload:       canonical,
			PayloadHash:   model.PayloadHash,
			PrevEventHash: model.PrevEventHash,
			EventHash:     model.EventHash,
			CreatedAt:     model.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *EventRepository) nextEventSeq(ctx context.Context) (int64, string, error) {
	if err := r.db.WithContext(ctx).Exec(
		"INSERT INTO event_seq (id, seq) VALUES (?, 0) ON CONFLICT (id) DO NOTHING",
		eventSeqRowID,
	).Error; err != nil {
		return 0, "", err
	}

	var currentSeq int64
	if err := r.db.WithContext(ctx).Raw(
		"SELECT seq FROM event_seq WHERE id = ? FOR UPDATE",
		eventSeqRowID,
	).Scan(&currentSeq).Error; err != nil {
		return 0, "", err
	}
	nextSeq := currentSeq + 1
	if err := r.db.WithContext(ctx).Exec(
		"UPDATE event_seq SET seq = ? WHERE id = ?",
		nextSeq,
		eventSeqRowID,
	).Error; err != nil {
		return 0, "", err
	}

	prevHash := "0000000000000000000000000000000000000000000000000000000000000000"
	if currentSeq > 0 {
		var prev EventModel
		if err := r.db.WithContext(ctx).
			Where("seq = ?", currentSeq).
			Take(&prev).Error; err != nil {
			return 0, "", err
		}
		prevHash = prev.EventHash
	}
	if prevHash == "" {
		return 0, "", fmt.Errorf("missing previous event hash at seq %d", currentSeq)
	}
	return nextSeq, prevHash, nil
}
