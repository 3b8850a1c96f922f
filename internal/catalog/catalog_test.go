package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cropsim/crop-dashboard/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeLister struct {
	calls atomic.Int32
	delay time.Duration
	crops []domain.Crop
	err   error

	// release, when set, blocks each fetch until closed.
	release chan struct{}
}

func (f *fakeLister) ListCrops(ctx context.Context) ([]domain.Crop, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.crops, nil
}

var testCrops = []domain.Crop{
	{ID: "wheat", Name: "Wheat", YieldPerCrop: 0.3, DaysToMature: 120, WaterNeeded: 0.5},
	{ID: "rice", Name: "Rice", YieldPerCrop: 0.4, DaysToMature: 150, WaterNeeded: 1},
}

func TestCropsCachesAfterFirstFetch(t *testing.T) {
	f := &fakeLister{crops: testCrops}
	a := NewAccessor(f, nil)

	for i := 0; i < 3; i++ {
		crops, err := a.Crops(context.Background())
		require.NoError(t, err)
		assert.Len(t, crops, 2)
	}
	assert.EqualValues(t, 1, f.calls.Load())
	assert.True(t, a.Loaded())
}

func TestCropsReturnsCopy(t *testing.T) {
	a := NewAccessor(&fakeLister{crops: testCrops}, nil)
	crops, err := a.Crops(context.Background())
	require.NoError(t, err)
	crops[0].Name = "mutated"

	again, err := a.Crops(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Wheat", again[0].Name)
}

func TestConcurrentCallersShareFetch(t *testing.T) {
	f := &fakeLister{crops: testCrops, delay: 50 * time.Millisecond}
	a := NewAccessor(f, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			crops, err := a.Crops(context.Background())
			assert.NoError(t, err)
			assert.Len(t, crops, 2)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestFailuresAreNotCached(t *testing.T) {
	f := &fakeLister{err: &domain.NetworkError{Op: "list", StatusCode: 503, Err: errors.New("unavailable")}}
	a := NewAccessor(f, nil)

	_, err := a.Crops(context.Background())
	var ne *domain.NetworkError
	require.True(t, errors.As(err, &ne))
	assert.False(t, a.Loaded())

	f.err = nil
	f.crops = testCrops
	crops, err := a.Crops(context.Background())
	require.NoError(t, err)
	assert.Len(t, crops, 2)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestInvalidateRefetches(t *testing.T) {
	f := &fakeLister{crops: testCrops}
	a := NewAccessor(f, nil)
	_, err := a.Crops(context.Background())
	require.NoError(t, err)

	a.Invalidate()
	assert.False(t, a.Loaded())
	_, err = a.Crops(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestCancelledCallerDoesNotFailOthers(t *testing.T) {
	f := &fakeLister{crops: testCrops, release: make(chan struct{})}
	a := NewAccessor(f, nil)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := a.Crops(ctx)
		first <- err
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		crops []domain.Crop
		err   error
	}
	second := make(chan result, 1)
	go func() {
		crops, err := a.Crops(context.Background())
		second <- result{crops, err}
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(f.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Len(t, res.crops, 2)
	assert.EqualValues(t, 1, f.calls.Load())
	assert.True(t, a.Loaded())
}

func TestInvalidateDuringFetchDiscardsResult(t *testing.T) {
	f := &fakeLister{crops: testCrops, release: make(chan struct{})}
	a := NewAccessor(f, nil)

	done := make(chan error, 1)
	go func() {
		_, err := a.Crops(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)

	a.Invalidate()
	close(f.release)
	require.NoError(t, <-done)
	assert.False(t, a.Loaded())

	_, err := a.Crops(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.calls.Load())
	assert.True(t, a.Loaded())
}

func TestLookup(t *testing.T) {
	a := NewAccessor(&fakeLister{crops: testCrops}, nil)
	c, err := a.Lookup(context.Background(), "rice")
	require.NoError(t, err)
	assert.Equal(t, "Rice", c.Name)

	_, err = a.Lookup(context.Background(), "maize")
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestListing(t *testing.T) {
	rows := Listing(testCrops)
	require.Len(t, rows, 2)
	assert.Equal(t, "wheat", rows[0].ID)
	assert.InDelta(t, 5.0, rows[0].Efficiency, 1e-9)

	zero := Listing([]domain.Crop{{ID: "x", Name: "X", YieldPerCrop: 1}})
	data, err := json.Marshal(zero)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"efficiency":"Infinity"`)

	assert.Empty(t, Listing(nil))
}
