package pipeline

import (
	"context"
	"sync"
)

// Parallel applies fn to each value with up to n workers and yields results
// in input order. The first error cancels outstanding work.
func Parallel[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) (O, error)) *Pipeline[O] {
	if n <= 0 {
		n = 1
	}
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			source := p.create(ctx)
			workerCtx, cancel := context.WithCancel(ctx)

			// Each job carries its own reply channel; replies are read in
			// submission order, which keeps output ordered.
			type job struct {
				val   I
				reply chan result[O]
			}
			jobs := make(chan job, n)
			order := make(chan chan result[O], n)
			fed := make(chan struct{})

			go func() {
				defer close(fed)
				defer close(jobs)
				defer close(order)
				for {
					val, ok, err := source.Next(workerCtx)
					if err != nil {
						reply := make(chan result[O], 1)
						reply <- result[O]{err: err}
						select {
						case order <- reply:
						case <-workerCtx.Done():
						}
						return
					}
					if !ok {
						return
					}
					reply := make(chan result[O], 1)
					select {
					case order <- reply:
					case <-workerCtx.Done():
						return
					}
					select {
					case jobs <- job{val: val, reply: reply}:
					case <-workerCtx.Done():
						return
					}
				}
			}()

			var wg sync.WaitGroup
			for range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := range jobs {
						o, err := fn(workerCtx, j.val)
						if err != nil {
							j.reply <- result[O]{err: err}
							continue
						}
						j.reply <- result[O]{val: o, ok: true}
					}
				}()
			}

			out := make(chan result[O], n)
			go func() {
				defer close(out)
				for reply := range order {
					var r result[O]
					select {
					case r = <-reply:
					case <-workerCtx.Done():
						return
					}
					select {
					case out <- r:
					case <-workerCtx.Done():
						return
					}
					if r.err != nil {
						cancel()
						return
					}
				}
			}()

			return &channelIter[O]{
				ch: out,
				closer: func() error {
					cancel()
					// source is not safe for concurrent use; the feeder must
					// be out of Next before Close.
					<-fed
					wg.Wait()
					return source.Close()
				},
			}
		},
	}
}
