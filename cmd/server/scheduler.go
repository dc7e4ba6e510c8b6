package main

import (
	"context"
	"log"
	"sync"

	julia "github.com/sb15895/juliafield"
)

// bandRows is the scheduling granularity: one unit of work is this many
// consecutive field rows.
const bandRows = 16

// band is a half-open row range [start, end) of the field.
type band struct {
	start, end int
}

// fieldScheduler distributes the rows of one field evaluation across
// worker goroutines. Bands are fully independent and each is written by
// exactly one worker, so the only shared state is the bookkeeping below.
type fieldScheduler struct {
	grid   julia.Grid
	params julia.Params
	field  *julia.Field

	ctx       context.Context
	ctxCancel context.CancelFunc

	totalCells    int
	finishedCells int

	workers   int
	unstarted map[band]struct{}
	inProcess map[band]struct{}
	m         sync.Mutex

	// onProgress, if set, is called after every finished band with the
	// done fraction and the current worker count.
	onProgress func(done float64, workers int)
}

func newFieldScheduler(g julia.Grid, p julia.Params) *fieldScheduler {
	side := g.Resolution + 1
	unstarted := make(map[band]struct{})
	for start := 0; start < side; start += bandRows {
		end := start + bandRows
		if end > side {
			end = side
		}
		unstarted[band{start: start, end: end}] = struct{}{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &fieldScheduler{
		grid:       g,
		params:     p,
		field:      julia.NewField(g.Resolution),
		unstarted:  unstarted,
		inProcess:  make(map[band]struct{}),
		totalCells: side * side,
		ctx:        ctx,
		ctxCancel:  cancel,
	}
}

// run fans out n evaluation workers and returns the completed field.
func (fs *fieldScheduler) run(n int) *julia.Field {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fs.evaluate()
		}()
	}
	wg.Wait()
	<-fs.ctx.Done()
	return fs.field
}

// evaluate processes unstarted bands until none remain.
// Can be called from multiple goroutines in parallel.
func (fs *fieldScheduler) evaluate() {
	fs.incActiveWorkers()
	defer fs.decActiveWorkers()

	for {
		bd, found := fs.popBand()
		if !found {
			break
		}
		julia.EvaluateRows(fs.field, fs.grid, fs.params, bd.start, bd.end)
		fs.bandFinished(bd)
	}
}

func (fs *fieldScheduler) popBand() (bd band, found bool) {
	fs.m.Lock()
	defer fs.m.Unlock()

	if len(fs.unstarted) == 0 {
		return band{}, false
	}
	for bd = range fs.unstarted {
		break
	}
	delete(fs.unstarted, bd)
	fs.inProcess[bd] = struct{}{}
	return bd, true
}

func (fs *fieldScheduler) bandFinished(bd band) {
	fs.m.Lock()

	delete(fs.inProcess, bd)
	side := fs.grid.Resolution + 1
	fs.finishedCells += (bd.end - bd.start) * side
	done := float64(fs.finishedCells) / float64(fs.totalCells)
	workers := fs.workers

	complete := len(fs.unstarted) == 0 && len(fs.inProcess) == 0
	fs.m.Unlock()

	if fs.onProgress != nil {
		fs.onProgress(done, workers)
	}
	if complete {
		fs.ctxCancel()
	}
}

func (fs *fieldScheduler) finished() float64 {
	fs.m.Lock()
	defer fs.m.Unlock()
	return float64(fs.finishedCells) / float64(fs.totalCells)
}

func (fs *fieldScheduler) incActiveWorkers() {
	fs.m.Lock()
	fs.workers++
	w := fs.workers
	fs.m.Unlock()

	log.Printf("workers: %d", w)
}

func (fs *fieldScheduler) decActiveWorkers() {
	fs.m.Lock()
	fs.workers--
	w := fs.workers
	fs.m.Unlock()

	log.Printf("workers: %d", w)
}
