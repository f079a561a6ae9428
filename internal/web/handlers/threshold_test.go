package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpdateThreshold(t *testing.T) {
	svc := newTestService(t, nil)

	handler := NewConfigHandler(svc)
	req := httptest.NewRequest("POST", "/config/threshold", strings.NewReader(`{"threshold": 0.45}`))
	recorder := httptest.NewRecorder()

	handler.UpdateThreshold(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp thresholdResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.OldThreshold != 0.6 {
		t.Errorf("OldThreshold = %f, want 0.6", resp.OldThreshold)
	}
	if resp.NewThreshold != 0.45 {
		t.Errorf("NewThreshold = %f, want 0.45", resp.NewThreshold)
	}
	if svc.Threshold() != 0.45 {
		t.Errorf("service threshold = %f, want 0.45", svc.Threshold())
	}
}

func TestUpdateThreshold_OutOfRange(t *testing.T) {
	svc := newTestService(t, nil)
	handler := NewConfigHandler(svc)

	for _, body := range []string{`{"threshold": 0.05}`, `{"threshold": 1.5}`, `{"threshold": -0.3}`} {
		req := httptest.NewRequest("POST", "/config/threshold", strings.NewReader(body))
		recorder := httptest.NewRecorder()

		handler.UpdateThreshold(recorder, req)

		assertStatusCode(t, recorder, http.StatusBadRequest)

		var resp errorResponse
		parseJSONResponse(t, recorder, &resp)
		if resp.Code != "THRESHOLD_OUT_OF_RANGE" {
			t.Errorf("body %s: code = %s", body, resp.Code)
		}
	}

	if svc.Threshold() != 0.6 {
		t.Errorf("threshold changed to %f after rejected updates", svc.Threshold())
	}
}

func TestUpdateThreshold_MissingBody(t *testing.T) {
	svc := newTestService(t, nil)
	handler := NewConfigHandler(svc)

	for _, body := range []string{``, `{}`, `not json`} {
		req := httptest.NewRequest("POST", "/config/threshold", strings.NewReader(body))
		recorder := httptest.NewRecorder()

		handler.UpdateThreshold(recorder, req)

		assertStatusCode(t, recorder, http.StatusBadRequest)
	}
}
