package faceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Box is a face bounding box in frame pixel coordinates.
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Detection is one face found in a frame image.
type Detection struct {
	Embedding []float32 `json:"embedding"`
	Box       Box       `json:"box"`
}

// Client calls the face detection/embedding microservice.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. Skip mode returns canned vectors so the rest of the
// pipeline can run without the microservice.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // face processing can take time
		},
	}
}

// Detect requests all face detections for a frame image. Zero detections is
// a normal outcome, not an error.
func (c *Client) Detect(ctx context.Context, imageURL string) ([]Detection, error) {
	if c.Skip {
		return []Detection{{
			Embedding: mockEmbedding(),
			Box:       Box{Top: 40, Right: 200, Bottom: 200, Left: 40},
		}}, nil
	}
	if imageURL == "" {
		return nil, fmt.Errorf("image url required")
	}

	var out struct {
		Detections []Detection `json:"detections"`
	}
	if err := c.post(ctx, "/detect", map[string]string{"image_url": imageURL}, &out); err != nil {
		return nil, err
	}
	return out.Detections, nil
}

// Embed requests a single reference embedding for an enrollment image.
// Exactly one face is expected; zero faces is an error so enrollment can be
// rejected.
func (c *Client) Embed(ctx context.Context, imageURL string) ([]float32, error) {
	if c.Skip {
		return mockEmbedding(), nil
	}
	if imageURL == "" {
		return nil, fmt.Errorf("image url required")
	}

	var out struct {
		Embedding     []float32 `json:"embedding"`
		FacesDetected int       `json:"faces_detected"`
	}
	if err := c.post(ctx, "/embed", map[string]string{"image_url": imageURL}, &out); err != nil {
		return nil, err
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("no face detected in image")
	}
	return out.Embedding, nil
}

// Health checks if the face service is available.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("face service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("face service unhealthy: %s", resp.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("face service error %s: %s", resp.Status, string(bodyBytes))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// mockEmbedding is a fixed 128-dim vector for skip mode.
func mockEmbedding() []float32 {
	emb := make([]float32, 128)
	for i := range emb {
		emb[i] = float32(i) / 128
	}
	return emb
}
