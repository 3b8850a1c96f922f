package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/cropsim/crop-dashboard/internal/catalog"
	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/internal/output"
)

// CropSource supplies the crop catalog
type CropSource interface {
	Crops(ctx context.Context) ([]domain.Crop, error)
}

// CatalogSession is the crop list view
type CatalogSession struct {
	src  CropSource
	log  *zap.Logger
	slot Slot[[]domain.Crop]
}

// NewCatalogSession creates a catalog view backed by src.
func NewCatalogSession(src CropSource, log *zap.Logger) *CatalogSession {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogSession{src: src, log: log}
}

// Invalidate drops any catalog cached by the source so the next load refetches.
func (s *CatalogSession) Invalidate() {
	if inv, ok := s.src.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
}

// Begin starts a load.
func (s *CatalogSession) Begin() Token { return s.slot.Begin() }

// Fetch performs the remote part of a load. It does not touch session state
// and may run on another goroutine.
func (s *CatalogSession) Fetch(ctx context.Context) ([]domain.Crop, error) {
	return s.src.Crops(ctx)
}

// Complete applies the outcome of the load identified by tok.
func (s *CatalogSession) Complete(tok Token, crops []domain.Crop, err error) bool {
	if err != nil {
		ok := s.slot.Fail(tok, err)
		if ok {
			s.log.Warn("catalog load failed", zap.Error(err))
		}
		return ok
	}
	if crops == nil {
		crops = []domain.Crop{}
	}
	ok := s.slot.Resolve(tok, crops)
	if !ok {
		s.log.Debug("discarding stale catalog response", zap.Uint64("token", uint64(tok)))
	}
	return ok
}

// Load runs a load synchronously.
func (s *CatalogSession) Load(ctx context.Context) error {
	tok := s.Begin()
	crops, err := s.Fetch(ctx)
	s.Complete(tok, crops, err)
	return err
}

// State returns the view state.
func (s *CatalogSession) State() State { return s.slot.State() }

// Err returns the load error while Failed.
func (s *CatalogSession) Err() error { return s.slot.Err() }

// Crops returns the loaded crops. The list is empty unless the view is Ready.
func (s *CatalogSession) Crops() []domain.Crop {
	if s.slot.State() != Ready {
		return []domain.Crop{}
	}
	crops, _ := s.slot.Result()
	return crops
}

// Report renders the catalog listing.
func (s *CatalogSession) Report() (*output.Report, error) {
	if s.slot.State() != Ready {
		if err := s.slot.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoResult
	}
	return output.NewCatalogReport(catalog.Listing(s.Crops())), nil
}
