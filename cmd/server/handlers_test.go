package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	julia "github.com/sb15895/juliafield"
)

func testRouter(t *testing.T) (*gin.Engine, *app) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a := newApp(testStore(t), newProgressHub(), 2)
	return newRouter(a), a
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// waitDone polls the job endpoint until the async evaluation finishes.
func waitDone(t *testing.T, r *gin.Engine, id string) job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/fields/"+id, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("get job: status %d: %s", w.Code, w.Body.String())
		}
		var j job
		if err := json.Unmarshal(w.Body.Bytes(), &j); err != nil {
			t.Fatalf("decode job: %v", err)
		}
		switch j.Status {
		case statusDone:
			return j
		case statusFailed:
			t.Fatalf("job failed: %s", j.Error)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return job{}
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestCreateFieldRejectsBadArguments(t *testing.T) {
	r, _ := testRouter(t)
	tests := []struct {
		name string
		body fieldRequest
	}{
		{"zero resolution", fieldRequest{Resolution: 0}},
		{"negative resolution", fieldRequest{Resolution: -4}},
		{"negative bound", fieldRequest{Resolution: 8, Bound: -1}},
		{"negative escape radius", fieldRequest{Resolution: 8, EscapeRadius: -2}},
		{"negative max iterations", fieldRequest{Resolution: 8, MaxIterations: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/fields", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestFieldJobLifecycle(t *testing.T) {
	r, _ := testRouter(t)

	// c = 0 over the default window: the unit disk reaches the cap.
	w := doJSON(t, r, http.MethodPost, "/api/v1/fields", fieldRequest{
		Resolution:    32,
		MaxIterations: 100,
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("create: status = %d, want 202: %s", w.Code, w.Body.String())
	}
	var created job
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created job: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created job has no id")
	}
	if created.Bound != 1.5 || created.EscapeRadius != 4.0 {
		t.Errorf("defaults not applied: %+v", created)
	}

	done := waitDone(t, r, created.ID)
	if done.EscapeFraction == nil {
		t.Fatal("done job has no escape fraction")
	}
	if *done.EscapeFraction <= 0 || *done.EscapeFraction >= 1 {
		t.Errorf("escape fraction = %v, want in (0, 1) for c=0 on the default window", *done.EscapeFraction)
	}

	t.Run("counts", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/fields/%s/counts", created.ID), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var resp struct {
			Resolution int   `json:"resolution"`
			Counts     []int `json:"counts"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode counts: %v", err)
		}
		if len(resp.Counts) != 33*33 {
			t.Fatalf("got %d counts, want %d", len(resp.Counts), 33*33)
		}
	})

	t.Run("render", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/fields/%s/render", created.ID), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("content type = %q, want image/png", ct)
		}
		if w.Body.Len() == 0 {
			t.Error("empty PNG body")
		}
	})

	t.Run("list", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/fields", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestGetFieldMissing(t *testing.T) {
	r, _ := testRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/v1/fields/no-such-job", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestRenderNotDoneConflicts(t *testing.T) {
	r, a := testRouter(t)
	j := testJob("pending-job")
	if err := a.store.Create(j); err != nil {
		t.Fatalf("Create: %v", err)
	}
	w := doJSON(t, r, http.MethodGet, "/api/v1/fields/pending-job/render", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

// Re-evaluation path: a done job whose field cache was dropped (e.g.
// after a restart) is recomputed from the stored parameters.
func TestRenderAfterCacheLoss(t *testing.T) {
	r, a := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/fields", fieldRequest{Resolution: 16, MaxIterations: 50})
	if w.Code != http.StatusAccepted {
		t.Fatalf("create: status = %d", w.Code)
	}
	var created job
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	waitDone(t, r, created.ID)

	a.m.Lock()
	a.fields = make(map[string]*julia.Field)
	a.m.Unlock()

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/fields/%s/render", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("render after cache loss: status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
}
