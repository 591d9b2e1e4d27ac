package squash

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// chunkSize is the number of items handed to a worker at once. It's fixed so
// that anything accumulated per chunk comes out the same no matter how many
// workers there are.
const chunkSize = 1 << 14

// span is the half-open range [start, end) of chunk number index.
type span struct {
	index      int
	start, end int
}

func chunks(n int) []span {
	spans := make([]span, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		spans = append(spans, span{len(spans), start, end})
	}
	return spans
}

// workersFor returns how many goroutines parallel will use for n items.
func workersFor(n int, single bool) int {
	if single {
		return 1
	}
	w := runtime.GOMAXPROCS(0)
	if c := (n + chunkSize - 1) / chunkSize; c < w {
		w = c
	}
	if w < 1 {
		w = 1
	}
	return w
}

// parallel calls fn for every chunk of [0, n) using the given number of
// workers. fn is told which worker is calling it, which is always in
// [0, workers), so it can use per-worker state without locking.
func parallel(n, workers int, fn func(worker int, s span)) {
	spans := chunks(n)
	if workers <= 1 {
		for _, s := range spans {
			fn(0, s)
		}
		return
	}

	var next int64 = -1
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&next, 1))
				if i >= len(spans) {
					return
				}
				fn(w, spans[i])
			}
		}(w)
	}
	wg.Wait()
}
