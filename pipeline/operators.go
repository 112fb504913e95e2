package pipeline

import (
	"context"
	"sync"
)

// Map transforms each value using fn.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &mapIter[I, O]{source: p.create(ctx), fn: fn}
		},
	}
}

// Filter keeps only values that satisfy the predicate.
func Filter[T any](p *Pipeline[T], fn func(T) bool) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &filterIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

// Tap calls fn as a side-effect for each value and passes it through unchanged.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &tapIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

// Settled is the outcome of one FanOutSettled branch.
type Settled[O any] struct {
	Value O
	Err   error
}

// FanOut applies every fn to each input concurrently and yields the results
// in fn order. The first branch error fails the whole value.
func FanOut[I, O any](p *Pipeline[I], fns ...func(context.Context, I) (O, error)) *Pipeline[[]O] {
	return Map(FanOutSettled(p, fns...), func(_ context.Context, settled []Settled[O]) ([]O, error) {
		out := make([]O, len(settled))
		for i, s := range settled {
			if s.Err != nil {
				return nil, s.Err
			}
			out[i] = s.Value
		}
		return out, nil
	})
}

// FanOutSettled applies every fn to each input concurrently and yields one
// Settled per fn, in fn order. Branch errors are reported, not propagated.
func FanOutSettled[I, O any](p *Pipeline[I], fns ...func(context.Context, I) (O, error)) *Pipeline[[]Settled[O]] {
	return &Pipeline[[]Settled[O]]{
		create: func(ctx context.Context) Iterator[[]Settled[O]] {
			return &fanOutIter[I, O]{source: p.create(ctx), fns: fns}
		},
	}
}

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	out, err := it.fn(ctx, val)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type filterIter[T any] struct {
	source Iterator[T]
	fn     func(T) bool
}

func (it *filterIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		if it.fn(val) {
			return val, true, nil
		}
	}
}

func (it *filterIter[T]) Close() error { return it.source.Close() }

type tapIter[T any] struct {
	source Iterator[T]
	fn     func(context.Context, T)
}

func (it *tapIter[T]) Next(ctx context.Context) (T, bool, error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, ok, err
	}
	it.fn(ctx, val)
	return val, true, nil
}

func (it *tapIter[T]) Close() error { return it.source.Close() }

type fanOutIter[I, O any] struct {
	source Iterator[I]
	fns    []func(context.Context, I) (O, error)
}

func (it *fanOutIter[I, O]) Next(ctx context.Context) ([]Settled[O], bool, error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	settled := make([]Settled[O], len(it.fns))
	var wg sync.WaitGroup
	wg.Add(len(it.fns))
	for i, fn := range it.fns {
		go func() {
			defer wg.Done()
			settled[i].Value, settled[i].Err = fn(ctx, val)
		}()
	}
	wg.Wait()
	return settled, true, nil
}

func (it *fanOutIter[I, O]) Close() error { return it.source.Close() }
