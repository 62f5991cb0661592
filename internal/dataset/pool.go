package dataset

import (
	"context"
	"sync"
)

// ReadFunc loads the records of one file.
type ReadFunc func(path string) ([]Record, error)

// FileRecords carries one file's records through the pool.
type FileRecords struct {
	Path    string
	Records []Record
	Err     error
}

// Pool reads files concurrently while emitting results in input order.
type Pool struct {
	Workers int
}

// NewPool creates a pool with at least one worker.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	return &Pool{Workers: workers}
}

// fileSlot holds a file being read. The done channel is closed when the
// read completes, letting the emitter wait without spinning.
type fileSlot struct {
	result FileRecords
	done   chan struct{}
}

// Read launches the pool over paths. The returned channel closes once all
// results are emitted or the context is cancelled; the caller must drain it.
func (p *Pool) Read(ctx context.Context, paths []string, read ReadFunc) <-chan FileRecords {
	out := make(chan FileRecords, p.Workers)
	slots := make(chan *fileSlot, p.Workers)
	jobs := make(chan *fileSlot, p.Workers)

	go p.dispatch(ctx, paths, slots, jobs)

	wg := p.startWorkers(jobs, read)

	go p.emit(ctx, slots, out, wg)

	return out
}

// dispatch creates a slot per path and feeds both the ordered queue and the
// worker pool.
func (p *Pool) dispatch(ctx context.Context, paths []string, slots, jobs chan<- *fileSlot) {
	defer close(slots)
	defer close(jobs)

	for _, path := range paths {
		slot := &fileSlot{result: FileRecords{Path: path}, done: make(chan struct{})}

		select {
		case slots <- slot:
		case <-ctx.Done():
			return
		}

		select {
		case jobs <- slot:
		case <-ctx.Done():
			return
		}
	}
}

// startWorkers launches worker goroutines that read one file per job.
func (p *Pool) startWorkers(jobs <-chan *fileSlot, read ReadFunc) *sync.WaitGroup {
	var wg sync.WaitGroup

	wg.Add(p.Workers)

	for range p.Workers {
		go func() {
			defer wg.Done()

			for slot := range jobs {
				slot.result.Records, slot.result.Err = read(slot.result.Path)
				close(slot.done)
			}
		}()
	}

	return &wg
}

// emit sends results in input order by waiting on each slot's done channel.
func (p *Pool) emit(ctx context.Context, slots <-chan *fileSlot, out chan<- FileRecords, wg *sync.WaitGroup) {
	defer close(out)

	for slot := range slots {
		select {
		case <-slot.done:
		case <-ctx.Done():
			return
		}

		select {
		case out <- slot.result:
		case <-ctx.Done():
			return
		}
	}

	wg.Wait()
}
