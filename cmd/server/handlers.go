package main

import (
	"bytes"
	"errors"
	"image/png"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	julia "github.com/sb15895/juliafield"
	"github.com/sb15895/juliafield/render"
)

// app ties the HTTP surface to the store, the progress hub and the
// evaluation scheduler. Completed fields are cached in memory; after a
// restart they are re-evaluated on demand from the stored parameters.
type app struct {
	store   *jobStore
	hub     *progressHub
	workers int

	m      sync.Mutex
	fields map[string]*julia.Field
}

func newApp(store *jobStore, hub *progressHub, workers int) *app {
	return &app{
		store:   store,
		hub:     hub,
		workers: workers,
		fields:  make(map[string]*julia.Field),
	}
}

func newRouter(a *app) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", a.hub.handler())

	api := r.Group("/api/v1")
	fields := api.Group("/fields")
	{
		fields.POST("", a.createField)
		fields.GET("", a.listFields)
		fields.GET("/:id", a.getField)
		fields.GET("/:id/counts", a.getCounts)
		fields.GET("/:id/render", a.renderField)
	}

	return r
}

type fieldRequest struct {
	Resolution    int     `json:"resolution"`
	CRe           float64 `json:"c_re"`
	CIm           float64 `json:"c_im"`
	Bound         float64 `json:"bound"`
	EscapeRadius  float64 `json:"escape_radius"`
	MaxIterations int     `json:"max_iterations"`
}

// gridParams applies the evaluator defaults to omitted knobs. Resolution
// has no default: the caller must choose it.
func (req fieldRequest) gridParams() (julia.Grid, julia.Params) {
	g := julia.Grid{Resolution: req.Resolution, Bound: req.Bound}
	if g.Bound == 0 {
		g.Bound = julia.DefaultBound
	}
	p := julia.Params{
		C:             complex(req.CRe, req.CIm),
		EscapeRadius:  req.EscapeRadius,
		MaxIterations: req.MaxIterations,
	}
	if p.EscapeRadius == 0 {
		p.EscapeRadius = julia.DefaultEscapeRadius
	}
	if p.MaxIterations == 0 {
		p.MaxIterations = julia.DefaultMaxIterations
	}
	return g, p
}

func (a *app) createField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate before anything is persisted or dispatched.
	g, p := req.gridParams()
	if err := g.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	j := &job{
		ID:            uuid.NewString(),
		Resolution:    g.Resolution,
		CRe:           real(p.C),
		CIm:           imag(p.C),
		Bound:         g.Bound,
		EscapeRadius:  p.EscapeRadius,
		MaxIterations: p.MaxIterations,
		Status:        statusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := a.store.Create(j); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go a.runJob(j, g, p)

	c.JSON(http.StatusAccepted, j)
}

// runJob evaluates one field and records the outcome. Inputs were
// validated on submit, so evaluation itself cannot fail.
func (a *app) runJob(j *job, g julia.Grid, p julia.Params) {
	if err := a.store.SetRunning(j.ID); err != nil {
		log.Printf("job %s: set running: %v", j.ID, err)
		return
	}

	fs := newFieldScheduler(g, p)
	fs.onProgress = func(done float64, workers int) {
		a.hub.broadcast(progressFrame{
			JobID:    j.ID,
			Progress: done,
			Workers:  workers,
			Status:   string(statusRunning),
		})
	}

	workers := a.workers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	f := fs.run(workers)

	fraction, err := julia.EscapeFraction(f, p.MaxIterations)
	if err != nil {
		log.Printf("job %s: escape fraction: %v", j.ID, err)
		if err := a.store.SetFailed(j.ID, err.Error()); err != nil {
			log.Printf("job %s: set failed: %v", j.ID, err)
		}
		return
	}

	a.m.Lock()
	a.fields[j.ID] = f
	a.m.Unlock()

	if err := a.store.SetDone(j.ID, fraction); err != nil {
		log.Printf("job %s: set done: %v", j.ID, err)
		return
	}
	a.hub.broadcast(progressFrame{
		JobID:    j.ID,
		Progress: 1,
		Status:   string(statusDone),
	})
	log.Printf("job %s: done, escape fraction %.4f", j.ID, fraction)
}

func (a *app) listFields(c *gin.Context) {
	jobs, err := a.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (a *app) getField(c *gin.Context) {
	j, err := a.store.Get(c.Param("id"))
	if errors.Is(err, errJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, j)
}

func (a *app) getCounts(c *gin.Context) {
	j, f, ok := a.completedField(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resolution":     j.Resolution,
		"max_iterations": j.MaxIterations,
		"counts":         f.Counts(),
	})
}

func (a *app) renderField(c *gin.Context) {
	j, f, ok := a.completedField(c)
	if !ok {
		return
	}

	img := render.FieldImage(f, j.MaxIterations)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// completedField resolves a done job and its count field, re-evaluating
// from the stored parameters if the cache was lost. Writes the HTTP error
// response itself when it returns ok=false.
func (a *app) completedField(c *gin.Context) (*job, *julia.Field, bool) {
	j, err := a.store.Get(c.Param("id"))
	if errors.Is(err, errJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	if j.Status != statusDone {
		c.JSON(http.StatusConflict, gin.H{"error": "job is not done", "status": j.Status})
		return nil, nil, false
	}

	a.m.Lock()
	f, ok := a.fields[j.ID]
	a.m.Unlock()
	if ok {
		return j, f, true
	}

	g := julia.Grid{Resolution: j.Resolution, Bound: j.Bound}
	p := julia.Params{
		C:             complex(j.CRe, j.CIm),
		EscapeRadius:  j.EscapeRadius,
		MaxIterations: j.MaxIterations,
	}
	f, err = julia.EvaluateField(g, p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	a.m.Lock()
	a.fields[j.ID] = f
	a.m.Unlock()
	return j, f, true
}
