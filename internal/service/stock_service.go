package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
	"github.com/leplonghi/horamed-sub006/internal/storage"
	"github.com/rs/zerolog/log"
)

// StockEngine is the projection engine surface used by the service layer.
type StockEngine interface {
	DecrementOnDoseTaken(ctx context.Context, itemID string) (domain.DecrementResult, error)
	RecalculateProjection(ctx context.Context, itemID string) (domain.ProjectionResult, error)
	SetUnitsLeft(ctx context.Context, itemID string, unitsLeft int) (domain.ProjectionResult, error)
	RecalculateAll(ctx context.Context, concurrency int) (int, error)
}

// StockLister lists every stock record for exports.
type StockLister interface {
	ListAll(ctx context.Context) ([]domain.StockRecord, error)
}

type StockService struct {
	engine      StockEngine
	records     StockLister
	exporter    storage.ObjectStorage
	exportPath  string
	concurrency int
}

type StockServiceConfig struct {
	Concurrency  int
	ExportPrefix string
}

func NewStockService(engine StockEngine, records StockLister, exporter storage.ObjectStorage, cfg StockServiceConfig) *StockService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.ExportPrefix == "" {
		cfg.ExportPrefix = "exports/stock"
	}
	return &StockService{
		engine:      engine,
		records:     records,
		exporter:    exporter,
		exportPath:  cfg.ExportPrefix,
		concurrency: cfg.Concurrency,
	}
}

func (s *StockService) Decrement(ctx context.Context, itemID string) (domain.DecrementResult, error) {
	return s.engine.DecrementOnDoseTaken(ctx, itemID)
}

func (s *StockService) Recalculate(ctx context.Context, itemID string) (domain.ProjectionResult, error) {
	return s.engine.RecalculateProjection(ctx, itemID)
}

func (s *StockService) SetUnits(ctx context.Context, itemID string, unitsLeft int) (domain.ProjectionResult, error) {
	return s.engine.SetUnitsLeft(ctx, itemID, unitsLeft)
}

// RefreshAll re-derives every projection so they age as days pass.
func (s *StockService) RefreshAll(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := s.engine.RecalculateAll(ctx, s.concurrency)
	log.Info().Int("refreshed", n).Dur("elapsed", time.Since(start)).Msg("stock: refresh finished")
	return n, err
}

// Export uploads a CSV of all stock projections and returns its key.
func (s *StockService) Export(ctx context.Context, at time.Time) (string, error) {
	if s.exporter == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	records, err := s.records.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: list stock records: %w", domain.ErrReadFailure, err)
	}

	payload, err := storage.EncodeStockCSV(records)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.csv", s.exportPath, at.UTC().Format("2006-01-02T150405Z"))
	if err := s.exporter.UploadObject(ctx, key, payload); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	log.Info().Str("key", key).Int("records", len(records)).Msg("stock: export uploaded")
	return key, nil
}

// ListExports returns previous exports, newest key last.
func (s *StockService) ListExports(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	objects, err := s.exporter.ListObjects(ctx, s.exportPath+"/")
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}
