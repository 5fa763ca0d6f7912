package memoize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/pkg/testsupport"
)

// doubler returns a compute function that doubles x and counts executions.
func doubler(calls *atomic.Int64, x int) ComputeFn[int] {
	return func(ctx context.Context) (int, error) {
		calls.Add(1)
		return x * 2, nil
	}
}

func TestFunction_ComputeOnce(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64

	f, err := NewFunction[int]("double", WithCacheDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewFunction() error = %v", err)
	}

	v, err := f.Do(ctx, doubler(&calls, 3), 3)
	if err != nil || v != 6 {
		t.Fatalf("Do() = %v, %v, want 6, nil", v, err)
	}

	v, err = f.Do(ctx, doubler(&calls, 3), 3)
	if err != nil || v != 6 {
		t.Fatalf("second Do() = %v, %v, want 6, nil", v, err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("underlying function executed %d times, want 1", got)
	}
}

func TestFunction_DistinctArgsDistinctRecords(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var calls atomic.Int64

	f, err := NewFunction[int]("double", WithCacheDir(dir))
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := f.Do(ctx, doubler(&calls, 3), 3); v != 6 {
		t.Fatalf("Do(3) = %v, want 6", v)
	}
	if v, _ := f.Do(ctx, doubler(&calls, 4), 4); v != 8 {
		t.Fatalf("Do(4) = %v, want 8", v)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("executions = %d, want 2", got)
	}
	if got := testsupport.CountFiles(t, filepath.Join(dir, "double")); got != 2 {
		t.Errorf("records on disk = %d, want 2", got)
	}

	// Cached values stay distinct.
	if v, _ := f.Do(ctx, doubler(&calls, 3), 3); v != 6 {
		t.Errorf("cached Do(3) = %v, want 6", v)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("executions after cached read = %d, want 2", got)
	}
}

func TestFunction_ConcurrentCallersComputeOnce(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64
	release := make(chan struct{})

	f, err := NewFunction[int]("concurrent", WithStore(StoreMemory))
	if err != nil {
		t.Fatal(err)
	}

	compute := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	const callers = 20
	var started, done sync.WaitGroup
	results := make([]int, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		started.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			started.Done()
			results[i], errs[i] = f.Do(ctx, compute, "same-args")
		}(i)
	}

	started.Wait()
	close(release)
	done.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("underlying function executed %d times, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil || results[i] != 42 {
			t.Errorf("caller %d got %v, %v, want 42, nil", i, results[i], errs[i])
		}
	}
}

func TestFunction_ClearReexecutes(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64

	f, err := NewFunction[int]("clearable", WithCacheDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.Do(ctx, doubler(&calls, 3), 3); err != nil {
		t.Fatal(err)
	}
	if err := f.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := f.Do(ctx, doubler(&calls, 3), 3); err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("executions = %d, want 2 after Clear", got)
	}
}

func TestFunction_DisabledAlwaysExecutes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var calls atomic.Int64

	f, err := NewFunction[int]("disabled", WithCacheDir(dir), WithDisabled(true))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if v, err := f.Do(ctx, doubler(&calls, 5), 5); err != nil || v != 10 {
			t.Fatalf("Do() = %v, %v, want 10, nil", v, err)
		}
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("executions = %d, want 3 with caching disabled", got)
	}
	if got := testsupport.CountFiles(t, dir); got != 0 {
		t.Errorf("disabled function wrote %d records", got)
	}
}

func TestFunction_ErrorsPropagateAndAreNotCached(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64
	boom := errors.New("boom")

	f, err := NewFunction[int]("failing", WithCacheDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	fail := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	}

	if _, err := f.Do(ctx, fail, 1); !errors.Is(err, boom) {
		t.Fatalf("Do() error = %v, want %v", err, boom)
	}
	if _, err := f.Do(ctx, fail, 1); !errors.Is(err, boom) {
		t.Fatalf("second Do() error = %v, want %v", err, boom)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("executions = %d, want 2: failures must not be cached", got)
	}
}

func TestFunction_FailOpenOnUnderivableArgs(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64

	f, err := NewFunction[int]("underivable", WithCacheDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	// Function values cannot be canonicalized; the call runs uncached.
	opaque := func() {}
	for i := 0; i < 2; i++ {
		if v, err := f.Do(ctx, doubler(&calls, 3), opaque); err != nil || v != 6 {
			t.Fatalf("Do() = %v, %v, want fail-open result 6, nil", v, err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("executions = %d, want 2: underivable calls run uncached", got)
	}
}

type encodeFailCodec struct{ cache.Codec }

func (encodeFailCodec) Encode(any) ([]byte, error) {
	return nil, errors.New("not representable")
}

func TestFunction_SerializationErrorCarriesValue(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64

	f, err := NewFunction[int]("unserializable",
		WithCacheDir(t.TempDir()),
		WithCodec(encodeFailCodec{cache.NewMsgpackCodec()}),
	)
	if err != nil {
		t.Fatal(err)
	}

	v, err := f.Do(ctx, doubler(&calls, 3), 3)
	if v != 6 {
		t.Errorf("Do() value = %v, want 6 even when persistence fails", v)
	}
	var serr *cache.SerializationError
	if !errors.As(err, &serr) {
		t.Errorf("Do() error = %v, want SerializationError", err)
	}

	// Nothing was stored, so the next call computes again.
	if _, _ = f.Do(ctx, doubler(&calls, 3), 3); calls.Load() != 2 {
		t.Errorf("executions = %d, want 2", calls.Load())
	}
}

func TestFunction_DiskSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var calls atomic.Int64

	f1, err := NewFunction[int]("persistent", WithCacheDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := f1.Do(ctx, doubler(&calls, 7), 7); v != 14 {
		t.Fatal("warm-up call failed")
	}

	// A fresh Function over the same directory models a process restart.
	f2, err := NewFunction[int]("persistent", WithCacheDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	if v, err := f2.Do(ctx, doubler(&calls, 7), 7); err != nil || v != 14 {
		t.Fatalf("Do() after restart = %v, %v, want 14, nil", v, err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("executions = %d, want 1: record should survive restarts", got)
	}
}

func TestFunction_HybridPromotesDiskHits(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var calls atomic.Int64

	f1, err := NewFunction[int]("promoted", WithCacheDir(dir), WithStore(StoreBoth))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f1.Do(ctx, doubler(&calls, 9), 9); err != nil {
		t.Fatal(err)
	}

	// Cold restart: fresh memory, warm disk.
	f2, err := NewFunction[int]("promoted", WithCacheDir(dir), WithStore(StoreBoth))
	if err != nil {
		t.Fatal(err)
	}
	if v, err := f2.Do(ctx, doubler(&calls, 9), 9); err != nil || v != 18 {
		t.Fatalf("Do() after restart = %v, %v, want 18, nil", v, err)
	}

	// The disk hit was promoted; with the files gone the record must
	// still be served from memory.
	if err := os.RemoveAll(filepath.Join(dir, "promoted")); err != nil {
		t.Fatal(err)
	}
	if v, err := f2.Do(ctx, doubler(&calls, 9), 9); err != nil || v != 18 {
		t.Fatalf("Do() after removing files = %v, %v, want promoted hit", v, err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("executions = %d, want 1", got)
	}
}

func TestFunction_ShardedRecordsSpreadAcrossSubdirs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var calls atomic.Int64

	f, err := NewFunction[int]("sharded", WithCacheDir(dir), WithBranchFactor(4))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 32; i++ {
		if _, err := f.Do(ctx, doubler(&calls, i), i); err != nil {
			t.Fatal(err)
		}
	}

	root := filepath.Join(dir, "sharded")
	if got := testsupport.CountFiles(t, root); got != 32 {
		t.Errorf("records = %d, want 32", got)
	}
	if got := testsupport.Subdirs(t, root); len(got) < 2 {
		t.Errorf("records not distributed across subdirectories: %v", got)
	}
}

func TestFunction_CanceledWaiterDoesNotCancelComputation(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	entered := make(chan struct{})

	f, err := NewFunction[int]("abandoned", WithStore(StoreMemory))
	if err != nil {
		t.Fatal(err)
	}

	compute := func(ctx context.Context) (int, error) {
		calls.Add(1)
		close(entered)
		select {
		case <-release:
			return 42, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := f.Do(leaderCtx, compute, 1)
		leaderDone <- err
	}()

	<-entered

	// A second caller joins the in-flight computation.
	waiterDone := make(chan int, 1)
	go func() {
		v, _ := f.Do(context.Background(), compute, 1)
		waiterDone <- v
	}()

	// The first caller abandons; the computation must keep running.
	cancel()
	if err := <-leaderDone; !errors.Is(err, context.Canceled) {
		t.Fatalf("abandoning caller error = %v, want context.Canceled", err)
	}

	close(release)
	if v := <-waiterDone; v != 42 {
		t.Errorf("waiter got %v, want 42", v)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("executions = %d, want 1", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown store mode", func(c *Config) { c.Store = "redis" }, true},
		{"negative branch factor", func(c *Config) { c.BranchFactor = -1 }, true},
		{"nil codec", func(c *Config) { c.Codec = nil }, true},
		{"nil deriver", func(c *Config) { c.Deriver = nil }, true},
		{"bad memory config with memory store", func(c *Config) {
			c.Store = StoreMemory
			c.Memory.Capacity = 0
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
