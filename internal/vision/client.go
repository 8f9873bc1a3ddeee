// Package vision is the cloud OCR backstop: an external text-detection
// service consulted only when local recognition looks weak. The
// service is treated as unreliable and every call sits behind a
// soft-fail boundary.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pantrysnap/labelreader/internal/common"
)

// TextDetector lets us stub the cloud service in tests.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// Client calls the external text-detection endpoint.
type Client struct {
	cfg   common.VisionConfig
	httpc *http.Client
	log   *slog.Logger
}

func NewClient(cfg common.VisionConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: timeout},
		log:   log,
	}
}

type detectRequest struct {
	Image    string `json:"image"` // base64-encoded bytes
	Features string `json:"features"`
}

type detectResponse struct {
	Text string `json:"text"`
}

// DetectText posts the image and returns the service's best-effort
// full-text annotation. Callers treat any error as "no result".
func (c *Client) DetectText(ctx context.Context, image []byte) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", fmt.Errorf("vision endpoint not configured")
	}
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("vision.detect.start",
		"req_id", rid,
		"image_bytes", len(image),
	)

	body, err := json.Marshal(detectRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		Features: "TEXT_DETECTION",
	})
	if err != nil {
		return "", fmt.Errorf("encode vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn("vision.detect.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read vision response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("vision.detect.bad_status",
			"req_id", rid, "status", resp.StatusCode,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("vision status %d", resp.StatusCode)
	}

	var out detectResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode vision response: %w", err)
	}

	c.log.Info("vision.detect.ok",
		"req_id", rid,
		"text_len", len(out.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out.Text, nil
}
