package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-service/internal/config"
	"github.com/kozaktomas/face-service/internal/extract"
	"github.com/kozaktomas/face-service/internal/facedb"
	"github.com/kozaktomas/face-service/internal/service"
)

// stubExtractor returns canned extraction results, one per call.
type stubExtractor struct {
	results [][]extract.DetectedFace
	calls   int
}

func (s *stubExtractor) Extract(ctx context.Context, imageData []byte) ([]extract.DetectedFace, error) {
	if s.calls >= len(s.results) {
		return nil, errors.New("stub extractor: no more canned results")
	}
	result := s.results[s.calls]
	s.calls++
	return result, nil
}

func face(v float32) extract.DetectedFace {
	e := make(facedb.Embedding, facedb.EmbeddingDim)
	e[0] = v
	return extract.DetectedFace{BBox: extract.BBox{10, 90, 90, 10}, Embedding: e}
}

// newTestService builds a service with a stub extractor and a throwaway store.
func newTestService(t *testing.T, results [][]extract.DetectedFace) *service.Service {
	t.Helper()
	cfg := &config.Config{
		Face: config.FaceConfig{MatchThreshold: 0.6, MaxFacesPerWorker: 10},
		Paths: config.PathsConfig{
			StoreFile: filepath.Join(t.TempDir(), "known_faces.gob"),
		},
	}
	store := facedb.NewStore(cfg.Paths.StoreFile)
	index := facedb.NewFaceIndex(cfg.Face.MaxFacesPerWorker)
	return service.New(cfg, index, store, &stubExtractor{results: results}, nil)
}

// testImage returns a small decodable PNG.
func testImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds a multipart POST with form fields and image files.
func multipartRequest(t *testing.T, path string, fields map[string]string, files map[string][][]byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for field, contents := range files {
		for i, data := range contents {
			part, err := writer.CreateFormFile(field, "image.png")
			if err != nil {
				t.Fatalf("create file part %d: %v", i, err)
			}
			if _, err := part.Write(data); err != nil {
				t.Fatalf("write file part %d: %v", i, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, want int) {
	t.Helper()
	if recorder.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", recorder.Code, want, recorder.Body.String())
	}
}

func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), out); err != nil {
		t.Fatalf("parsing response %q: %v", recorder.Body.String(), err)
	}
}

// enrollFace registers one face through the service directly, bypassing HTTP.
func enrollFace(t *testing.T, svc *service.Service, workerID int64) {
	t.Helper()
	if _, err := svc.Enroll(context.Background(), workerID, testImage(t)); err != nil {
		t.Fatalf("enroll worker %d: %v", workerID, err)
	}
}
