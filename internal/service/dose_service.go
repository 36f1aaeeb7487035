package service

import (
	"context"
	"fmt"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
	"github.com/rs/zerolog/log"
)

// DoseResolver persists the user's action on a dose instance.
type DoseResolver interface {
	Resolve(ctx context.Context, userID, doseID string, status domain.DoseStatus, takenAt *time.Time) (domain.DoseInstance, error)
}

// Decrementer consumes stock after a dose is taken.
type Decrementer interface {
	DecrementOnDoseTaken(ctx context.Context, itemID string) (domain.DecrementResult, error)
}

type DoseService struct {
	doses    DoseResolver
	stock    Decrementer
	progress *ProgressService
	now      func() time.Time
}

func NewDoseService(doses DoseResolver, stock Decrementer, progress *ProgressService) *DoseService {
	return &DoseService{
		doses:    doses,
		stock:    stock,
		progress: progress,
		now:      time.Now,
	}
}

// Take marks the dose taken and then consumes one unit of stock. A stock
// failure is reported in the result but does not fail the dose action.
func (s *DoseService) Take(ctx context.Context, userID, doseID string, takenAt *time.Time) (domain.DoseResolution, error) {
	at := s.now()
	if takenAt != nil {
		at = *takenAt
	}

	dose, err := s.doses.Resolve(ctx, userID, doseID, domain.DoseTaken, &at)
	if err != nil {
		return domain.DoseResolution{}, fmt.Errorf("take dose %s: %w", doseID, err)
	}
	s.progress.Invalidate(ctx, userID)

	res := domain.DoseResolution{Dose: dose}
	stock, err := s.stock.DecrementOnDoseTaken(ctx, dose.ItemID)
	if err != nil {
		log.Error().Err(err).Str("dose_id", doseID).Str("item_id", dose.ItemID).Msg("dose: stock decrement failed")
		res.StockError = err.Error()
		return res, nil
	}
	if stock.Tracked {
		res.Stock = &stock
	}

	return res, nil
}

// Skip marks the dose skipped. Stock is untouched.
func (s *DoseService) Skip(ctx context.Context, userID, doseID string) (domain.DoseResolution, error) {
	dose, err := s.doses.Resolve(ctx, userID, doseID, domain.DoseSkipped, nil)
	if err != nil {
		return domain.DoseResolution{}, fmt.Errorf("skip dose %s: %w", doseID, err)
	}
	s.progress.Invalidate(ctx, userID)

	return domain.DoseResolution{Dose: dose}, nil
}
