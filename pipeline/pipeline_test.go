package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestFromSlice_Collect(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]string{"a", "b", "c"}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("got %v", got)
	}
}

func TestCollect_EmptyIsNonNil(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice[int](nil))
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestMapFilter_PreservesOrder(t *testing.T) {
	src := FromSlice([]int{5, 1, 4, 2, 3})
	doubled := Map(src, func(_ context.Context, n int) (int, error) { return n * 2, nil })
	big := Filter(doubled, func(n int) bool { return n > 4 })

	got, err := Collect(context.Background(), big)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{10, 8, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestMap_Error(t *testing.T) {
	failing := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("bad item")
		}
		return n, nil
	})
	got, err := Collect(context.Background(), failing)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(got) != 1 {
		t.Errorf("expected values before the error, got %v", got)
	}
}

func TestTap(t *testing.T) {
	var seen int32
	tapped := Tap(FromSlice([]int{1, 2, 3}), func(context.Context, int) { atomic.AddInt32(&seen, 1) })
	if _, err := Collect(context.Background(), tapped); err != nil {
		t.Fatal(err)
	}
	if seen != 3 {
		t.Errorf("tap saw %d values, want 3", seen)
	}
}

func TestFanOutSettled(t *testing.T) {
	fns := []func(context.Context, string) (int, error){
		func(_ context.Context, s string) (int, error) { return len(s), nil },
		func(context.Context, string) (int, error) { return 0, errors.New("model unavailable") },
		func(_ context.Context, s string) (int, error) { return strings.Count(s, " "), nil },
	}
	got, err := Collect(context.Background(), FanOutSettled(Just("we ship friday"), fns...))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("unexpected shape %v", got)
	}
	s := got[0]
	if s[0].Value != 14 || s[0].Err != nil {
		t.Errorf("branch 0 = %+v", s[0])
	}
	if s[1].Err == nil {
		t.Error("branch 1 should report its error")
	}
	if s[2].Value != 2 || s[2].Err != nil {
		t.Errorf("branch 2 = %+v", s[2])
	}
}

func TestFanOut_RunsConcurrently(t *testing.T) {
	release := make(chan struct{})
	var started int32
	wait := func(ctx context.Context, _ int) (int, error) {
		if atomic.AddInt32(&started, 1) == 2 {
			close(release)
		}
		select {
		case <-release:
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := Collect(ctx, FanOut(Just(0), wait, wait))
	if err != nil {
		t.Fatalf("branches did not run concurrently: %v", err)
	}
	if len(got) != 1 || got[0][0] != 1 || got[0][1] != 1 {
		t.Errorf("got %v", got)
	}
}

func TestFanOut_Error(t *testing.T) {
	ok := func(context.Context, int) (int, error) { return 1, nil }
	bad := func(context.Context, int) (int, error) { return 0, errors.New("fail") }
	if _, err := Collect(context.Background(), FanOut(Just(0), ok, bad)); err == nil {
		t.Fatal("expected FanOut to fail when a branch fails")
	}
}

func TestParallel_PreservesOrder(t *testing.T) {
	in := make([]int, 50)
	for i := range in {
		in[i] = i
	}
	slowEarly := Parallel(FromSlice(in), 4, func(_ context.Context, n int) (int, error) {
		if n%7 == 0 {
			time.Sleep(2 * time.Millisecond)
		}
		return n * n, nil
	})
	got, err := Collect(context.Background(), slowEarly)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(in) {
		t.Fatalf("got %d results, want %d", len(got), len(in))
	}
	for i, v := range got {
		if v != i*i {
			t.Fatalf("result %d = %d, want %d", i, v, i*i)
		}
	}
}

func TestParallel_Error(t *testing.T) {
	failing := Parallel(FromSlice([]int{1, 2, 3, 4, 5}), 2, func(_ context.Context, n int) (int, error) {
		if n == 3 {
			return 0, errors.New("worker failed")
		}
		return n, nil
	})
	got, err := Collect(context.Background(), failing)
	if err == nil {
		t.Fatal("expected error from parallel worker")
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected results before the failure, got %v", got)
	}
}

// slowSource yields increasing ints and records whether Close ran while a
// Next call was still in flight.
type slowSource struct {
	next        int
	active      atomic.Int32
	closedEarly atomic.Bool
	closed      atomic.Bool
}

func (s *slowSource) Next(ctx context.Context) (int, bool, error) {
	s.active.Add(1)
	defer s.active.Add(-1)
	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	case <-time.After(time.Millisecond):
	}
	s.next++
	return s.next, true, nil
}

func (s *slowSource) Close() error {
	if s.active.Load() != 0 {
		s.closedEarly.Store(true)
	}
	s.closed.Store(true)
	return nil
}

func TestParallel_ClosesSourceAfterFeeder(t *testing.T) {
	for range 20 {
		src := &slowSource{}
		p := &Pipeline[int]{create: func(context.Context) Iterator[int] { return src }}
		failing := Parallel(p, 3, func(_ context.Context, n int) (int, error) {
			if n == 4 {
				return 0, errors.New("worker failed")
			}
			return n, nil
		})
		if _, err := Collect(context.Background(), failing); err == nil {
			t.Fatal("expected error from parallel worker")
		}
		if !src.closed.Load() {
			t.Fatal("source was not closed")
		}
		if src.closedEarly.Load() {
			t.Fatal("source closed while Next was in flight")
		}
	}
}

func TestForEach(t *testing.T) {
	var sum int
	err := ForEach(context.Background(), FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) error {
		sum += n
		return nil
	})
	if err != nil || sum != 6 {
		t.Errorf("sum = %d, err = %v", sum, err)
	}

	stop := errors.New("stop")
	err = ForEach(context.Background(), FromSlice([]int{1, 2, 3}), func(context.Context, int) error { return stop })
	if !errors.Is(err, stop) {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestContext_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Collect(ctx, FromSlice([]int{1, 2, 3})); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
