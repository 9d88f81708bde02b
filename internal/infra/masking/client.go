package masking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sharpframes/sharpframes-processing-service/internal/domain/port"
)

// Client calls a remote segmentation service to turn a text prompt into a
// PNG mask for a frame. The frame travels as JPEG bytes in a JSON envelope.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a masking endpoint is configured. When false,
// GenerateMask always fails and callers should skip mask generation.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

type maskRequest struct {
	Prompt string `json:"prompt"`
	Image  []byte `json:"image"` // base64-encoded by encoding/json
}

func (c *Client) GenerateMask(ctx context.Context, frame []byte, prompt string) ([]byte, error) {
	if c.endpoint == "" {
		return nil, &port.ExternalFeatureError{
			Feature: "mask_generation",
			Err:     fmt.Errorf("no masking endpoint configured"),
		}
	}

	payload, err := json.Marshal(maskRequest{Prompt: prompt, Image: frame})
	if err != nil {
		return nil, &port.ExternalFeatureError{Feature: "mask_generation", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &port.ExternalFeatureError{Feature: "mask_generation", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &port.ExternalFeatureError{Feature: "mask_generation", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &port.ExternalFeatureError{
			Feature: "mask_generation",
			Err:     fmt.Errorf("masking service returned %d: %s", resp.StatusCode, body),
		}
	}

	mask, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &port.ExternalFeatureError{Feature: "mask_generation", Err: err}
	}
	return mask, nil
}
