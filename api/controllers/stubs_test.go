package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/boutique-backend/api/middleware"
)

func authedRequest(method, target, body string) (*http.Request, uuid.UUID) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	userID := uuid.New()
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String())), userID
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
	return body
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	errBody, _ := decodeEnvelope(t, resp)["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func dataField(t *testing.T, resp *httptest.ResponseRecorder) any {
	t.Helper()
	return decodeEnvelope(t, resp)["data"]
}
