package session

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/cropsim/crop-dashboard/internal/config"
	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/internal/output"
	"github.com/cropsim/crop-dashboard/internal/series"
)

var errEmptySimulation = &domain.DecodeError{Op: "simulate", Err: errors.New("empty response")}

// Simulator runs single-crop simulations
type Simulator interface {
	Simulate(ctx context.Context, cropID string, req domain.SimulateRequest) (*domain.SimulationResult, error)
}

// SimulateCall is a validated submission waiting to be sent.
type SimulateCall struct {
	Token   Token
	CropID  string
	Request domain.SimulateRequest
}

// SimulateSession is the single-crop simulation view.
type SimulateSession struct {
	CropID            string
	Years             int
	WaterAvailability float64
	Metric            series.Metric

	svc  Simulator
	log  *zap.Logger
	slot Slot[*domain.SimulationResult]
}

// NewSimulateSession creates a simulation view with its form seeded from d.
func NewSimulateSession(svc Simulator, d config.DefaultsConfig, log *zap.Logger) *SimulateSession {
	if log == nil {
		log = zap.NewNop()
	}
	m, err := series.ParseMetric(d.Metric)
	if err != nil {
		m = series.MetricYield
	}
	return &SimulateSession{
		Years:             d.Years,
		WaterAvailability: d.WaterAvailability,
		Metric:            m,
		svc:               svc,
		log:               log,
	}
}

// Validate checks the form without touching state.
func (s *SimulateSession) Validate() error {
	if s.CropID == "" {
		return &domain.ValidationError{Field: "crop", Message: "Please select a crop"}
	}
	return validateHorizon(s.Years, s.WaterAvailability)
}

func validateHorizon(years int, water float64) error {
	if years < 1 || years > config.MaxYears {
		return &domain.ValidationError{Field: "years", Message: "Years must be between 1 and 50"}
	}
	if math.IsNaN(water) || math.IsInf(water, 0) || water < 0 {
		return &domain.ValidationError{Field: "water_availability", Message: "Water availability must be a non-negative number"}
	}
	return nil
}

// Prepare validates the form and, if it is valid, enters Loading.
// A validation failure leaves the state untouched.
func (s *SimulateSession) Prepare() (SimulateCall, error) {
	if err := s.Validate(); err != nil {
		return SimulateCall{}, err
	}
	return SimulateCall{
		Token:  s.slot.Begin(),
		CropID: s.CropID,
		Request: domain.SimulateRequest{
			Years:             s.Years,
			WaterAvailability: s.WaterAvailability,
		},
	}, nil
}

// Fetch sends call to the service. It does not touch session state.
func (s *SimulateSession) Fetch(ctx context.Context, call SimulateCall) (*domain.SimulationResult, error) {
	return s.svc.Simulate(ctx, call.CropID, call.Request)
}

// Complete applies the outcome of the submission identified by tok.
// It reports whether the outcome was applied.
func (s *SimulateSession) Complete(tok Token, result *domain.SimulationResult, err error) bool {
	if err == nil && result == nil {
		err = errEmptySimulation
	}
	var ok bool
	if err != nil {
		ok = s.slot.Fail(tok, err)
	} else {
		ok = s.slot.Resolve(tok, result)
	}
	if !ok {
		s.log.Debug("discarding stale simulation response", zap.Uint64("token", uint64(tok)))
	}
	return ok
}

// Submit validates, calls the service and applies the result.
func (s *SimulateSession) Submit(ctx context.Context) error {
	call, err := s.Prepare()
	if err != nil {
		return err
	}
	result, err := s.Fetch(ctx, call)
	if err == nil && result == nil {
		err = errEmptySimulation
	}
	s.Complete(call.Token, result, err)
	return err
}

// State returns the view state.
func (s *SimulateSession) State() State { return s.slot.State() }

// Err returns the error of the last failed submission while Failed.
func (s *SimulateSession) Err() error { return s.slot.Err() }

// Result returns the last successful simulation.
func (s *SimulateSession) Result() (*domain.SimulationResult, bool) { return s.slot.Result() }

// View builds the chart view for the selected metric, or nil without a result.
func (s *SimulateSession) View() *series.View {
	r, ok := s.slot.Result()
	if !ok {
		return nil
	}
	return series.Build(r, s.Metric)
}

// Report renders the current view.
func (s *SimulateSession) Report() (*output.Report, error) {
	v := s.View()
	if v == nil {
		return nil, ErrNoResult
	}
	return output.NewSimulationReport(v), nil
}
