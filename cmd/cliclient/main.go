// cliclient submits a Julia set evaluation job to the field server,
// follows its progress over the websocket feed, and saves the rendered
// count field as a PNG file.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

var (
	server     = flag.String("server", "http://localhost:8080", "field server base URL")
	resolution = flag.Int("resolution", 512, "samples per axis (field is resolution+1 squared)")
	cre        = flag.Float64("cre", -0.122561, "real part of the Julia parameter c")
	cim        = flag.Float64("cim", 0.744862, "imaginary part of the Julia parameter c")
	iterations = flag.Int("iterations", 1000, "iteration cap per sample")
	output     = flag.String("o", "julia.png", "output PNG file")
)

// progressFrame mirrors the server's websocket update format.
type progressFrame struct {
	JobID    string  `json:"job_id"`
	Progress float64 `json:"progress"`
	Workers  int     `json:"workers"`
	Status   string  `json:"status"`
}

type fieldRequest struct {
	Resolution    int     `json:"resolution"`
	CRe           float64 `json:"c_re"`
	CIm           float64 `json:"c_im"`
	MaxIterations int     `json:"max_iterations"`
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	ctx := context.Background()

	// Subscribe to progress before submitting, so no frame is missed.
	wsURL := strings.Replace(*server, "http", "ws", 1) + "/ws"
	log.Printf("subscribing to progress on %s", wsURL)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("websocket.Dial: %w", err)
	}
	defer conn.CloseNow()

	log.Printf("submitting field job to %s", *server)
	id, err := submit(fieldRequest{
		Resolution:    *resolution,
		CRe:           *cre,
		CIm:           *cim,
		MaxIterations: *iterations,
	})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	log.Printf("job accepted: %s", id)

	// Follow the feed until our job reports done.
	for {
		var f progressFrame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return fmt.Errorf("read progress: %w", err)
		}
		if f.JobID != id {
			continue
		}
		log.Printf("progress: %.1f%% (%d workers)", f.Progress*100, f.Workers)
		if f.Status == "done" {
			break
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")

	log.Printf("downloading rendered field")
	resp, err := http.Get(*server + "/api/v1/fields/" + id + "/render")
	if err != nil {
		return fmt.Errorf("fetch render: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fetch render: status %d: %s", resp.StatusCode, body)
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}

	log.Printf("rendered field saved to %q", *output)
	return nil
}

func submit(req fieldRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	resp, err := http.Post(*server+"/api/v1/fields", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	var job struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return "", err
	}
	return job.ID, nil
}
