package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-service/internal/facedb"
)

const defaultExtractorURL = "http://localhost:8000"

// Client calls the face-extraction HTTP server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an extraction client. An empty baseURL selects the
// default local server.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultExtractorURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// extractResponse represents the response from the extraction server.
type extractResponse struct {
	Faces []struct {
		BBox      [4]int    `json:"bbox"`
		Embedding []float32 `json:"embedding"`
	} `json:"faces"`
}

// Extract posts the image as a multipart form and returns the detected faces.
func (c *Client) Extract(ctx context.Context, imageData []byte) ([]DetectedFace, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction server error (status %d): %s", resp.StatusCode, string(body))
	}

	var extResp extractResponse
	if err := json.Unmarshal(body, &extResp); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	faces := make([]DetectedFace, 0, len(extResp.Faces))
	for i, f := range extResp.Faces {
		if len(f.Embedding) != facedb.EmbeddingDim {
			return nil, fmt.Errorf("face %d: embedding has %d components, want %d", i, len(f.Embedding), facedb.EmbeddingDim)
		}
		faces = append(faces, DetectedFace{
			BBox:      f.BBox,
			Embedding: facedb.Embedding(f.Embedding),
		})
	}
	return faces, nil
}
