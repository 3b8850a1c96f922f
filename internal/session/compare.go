package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cropsim/crop-dashboard/internal/analytics"
	"github.com/cropsim/crop-dashboard/internal/config"
	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/internal/output"
)

// Comparer runs two-crop comparisons
type Comparer interface {
	Compare(ctx context.Context, req domain.CompareRequest) (domain.Comparison, error)
}

// CropLookup resolves crops by id for local comparisons
type CropLookup interface {
	Lookup(ctx context.Context, id string) (domain.Crop, error)
}

// CompareCall is a validated submission waiting to be sent.
type CompareCall struct {
	Token   Token
	Request domain.CompareRequest
}

// CompareSession is the two-crop comparison view. The held result always
// matches the selected option: changing the option drops it.
type CompareSession struct {
	Crop1ID           string
	Crop2ID           string
	Years             int
	WaterAvailability float64
	Chart             analytics.ChartType

	option domain.Option
	svc    Comparer
	log    *zap.Logger
	slot   Slot[domain.Comparison]
}

// NewCompareSession creates a comparison view with its form seeded from d.
func NewCompareSession(svc Comparer, d config.DefaultsConfig, log *zap.Logger) *CompareSession {
	if log == nil {
		log = zap.NewNop()
	}
	opt, err := domain.ParseOption(d.Option)
	if err != nil {
		opt = domain.OptionCharacteristics
	}
	ct, err := analytics.ParseChartType(d.Chart)
	if err != nil {
		ct = analytics.ChartYield
	}
	return &CompareSession{
		Years:             d.Years,
		WaterAvailability: d.WaterAvailability,
		Chart:             ct,
		option:            opt,
		svc:               svc,
		log:               log,
	}
}

// Option returns the selected comparison mode.
func (s *CompareSession) Option() domain.Option { return s.option }

// SetOption switches mode. A change returns the view to Idle with no result,
// and any response still in flight is discarded when it arrives.
func (s *CompareSession) SetOption(o domain.Option) {
	if o == s.option {
		return
	}
	s.log.Debug("comparison mode changed", zap.String("from", string(s.option)), zap.String("to", string(o)))
	s.option = o
	s.slot.Reset()
}

// Validate checks the form without touching state.
func (s *CompareSession) Validate() error {
	if s.Crop1ID == "" || s.Crop2ID == "" {
		return &domain.ValidationError{Field: "crop", Message: "Please select both crops"}
	}
	if s.Crop1ID == s.Crop2ID {
		return &domain.ValidationError{Field: "crop", Message: "Please select two different crops"}
	}
	return validateHorizon(s.Years, s.WaterAvailability)
}

// Prepare validates the form and, if it is valid, enters Loading.
func (s *CompareSession) Prepare() (CompareCall, error) {
	if err := s.Validate(); err != nil {
		return CompareCall{}, err
	}
	return CompareCall{
		Token: s.slot.Begin(),
		Request: domain.CompareRequest{
			Option:            s.option,
			Crop1ID:           s.Crop1ID,
			Crop2ID:           s.Crop2ID,
			Years:             s.Years,
			WaterAvailability: s.WaterAvailability,
		},
	}, nil
}

// Fetch sends call to the service. It does not touch session state.
func (s *CompareSession) Fetch(ctx context.Context, call CompareCall) (domain.Comparison, error) {
	return s.svc.Compare(ctx, call.Request)
}

// FetchLocal computes a characteristics comparison from catalog data instead
// of calling the service.
func (s *CompareSession) FetchLocal(ctx context.Context, crops CropLookup, call CompareCall) (domain.Comparison, error) {
	if call.Request.Option != domain.OptionCharacteristics {
		return nil, &domain.ValidationError{Field: "option", Message: "local comparison supports the characteristics option only"}
	}
	c1, err := crops.Lookup(ctx, call.Request.Crop1ID)
	if err != nil {
		return nil, err
	}
	c2, err := crops.Lookup(ctx, call.Request.Crop2ID)
	if err != nil {
		return nil, err
	}
	return analytics.LocalCharacteristics(c1, c2), nil
}

// Complete applies the outcome of the submission identified by tok. A missing
// result, or one whose mode differs from the current option, fails the
// submission with a *domain.DecodeError.
func (s *CompareSession) Complete(tok Token, result domain.Comparison, err error) bool {
	if err == nil {
		err = s.checkResult(result)
	}
	var ok bool
	if err != nil {
		ok = s.slot.Fail(tok, err)
	} else {
		ok = s.slot.Resolve(tok, result)
	}
	if !ok {
		s.log.Debug("discarding stale comparison response", zap.Uint64("token", uint64(tok)))
	}
	return ok
}

func (s *CompareSession) checkResult(result domain.Comparison) error {
	switch {
	case result == nil:
		return &domain.DecodeError{Op: "compare", Err: errors.New("empty response")}
	case result.Option() != s.option:
		return &domain.DecodeError{Op: "compare", Err: fmt.Errorf("got %s result for %s request", result.Option(), s.option)}
	}
	return nil
}

// Submit validates, calls the service and applies the result.
func (s *CompareSession) Submit(ctx context.Context) error {
	call, err := s.Prepare()
	if err != nil {
		return err
	}
	result, err := s.Fetch(ctx, call)
	if err == nil {
		err = s.checkResult(result)
	}
	s.Complete(call.Token, result, err)
	return err
}

// SubmitLocal is Submit with the comparison computed from crops.
func (s *CompareSession) SubmitLocal(ctx context.Context, crops CropLookup) error {
	call, err := s.Prepare()
	if err != nil {
		return err
	}
	result, err := s.FetchLocal(ctx, crops, call)
	if err == nil {
		err = s.checkResult(result)
	}
	s.Complete(call.Token, result, err)
	return err
}

// State returns the view state.
func (s *CompareSession) State() State { return s.slot.State() }

// Err returns the error of the last failed submission while Failed.
func (s *CompareSession) Err() error { return s.slot.Err() }

// Result returns the held comparison if it matches the current option.
func (s *CompareSession) Result() (domain.Comparison, bool) {
	r, ok := s.slot.Result()
	if !ok || r == nil || r.Option() != s.option {
		return nil, false
	}
	return r, true
}

// Characteristics returns the characteristics view, or nil in simulate mode
// or without a result.
func (s *CompareSession) Characteristics() *analytics.CharacteristicsView {
	r, _ := s.Result()
	c, ok := r.(*domain.CharacteristicsComparison)
	if !ok {
		return nil
	}
	return analytics.Characteristics(c)
}

// Simulation returns the simulate-mode view for the selected chart type, or
// nil in characteristics mode or without a result.
func (s *CompareSession) Simulation() *analytics.SimulationComparisonView {
	r, _ := s.Result()
	c, ok := r.(*domain.SimulationComparison)
	if !ok {
		return nil
	}
	return analytics.Simulation(c, s.Chart)
}

// Report renders the current view.
func (s *CompareSession) Report() (*output.Report, error) {
	if v := s.Characteristics(); v != nil {
		return output.NewCharacteristicsReport(v), nil
	}
	if v := s.Simulation(); v != nil {
		return output.NewSimulateComparisonReport(v), nil
	}
	return nil, ErrNoResult
}
