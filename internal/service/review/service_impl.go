package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/srs"
	"github.com/flashmark/flashmark/internal/platform/logger"
	"github.com/flashmark/flashmark/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	repo      store.Repository
	scheduler *srs.Scheduler
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a review Service on top of the given repository
// and scheduler. If logger is nil, the default logger is used.
func NewService(repo store.Repository, scheduler *srs.Scheduler, logger *slog.Logger) Service {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		repo:      repo,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "review_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitReview implements Service.SubmitReview.
func (s *serviceImpl) SubmitReview(
	ctx context.Context,
	cardID uuid.UUID,
	grade domain.Grade,
) (*srs.Outcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.Suspended {
		log.Warn("review submitted for suspended card",
			slog.String("card_id", cardID.String()))
		return nil, ErrCardSuspended
	}

	outcome, err := s.scheduler.Apply(*card, grade, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.ApplyReview(ctx, &outcome.Card, &outcome.Review); err != nil {
		log.Error("failed to persist review",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, fmt.Errorf("persisting review: %w", err)
	}

	log.Debug("review applied",
		slog.String("card_id", cardID.String()),
		slog.String("grade", string(grade)),
		slog.Int("interval_days", outcome.Card.IntervalDays),
		slog.Float64("ease_factor", outcome.Card.EaseFactor),
		slog.Time("due_at", outcome.Card.DueAt))

	return &outcome, nil
}

// NextCard implements Service.NextCard.
func (s *serviceImpl) NextCard(ctx context.Context, q store.DueQuery) (*domain.Card, error) {
	if q.Now.IsZero() {
		q.Now = s.now()
	}

	cards, err := s.repo.DueCards(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrNoCardsDue
	}
	return cards[0], nil
}
