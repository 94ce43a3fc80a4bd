package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"nayru/internal/engine"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	eng, err := engine.New(engine.Config{Provider: "mock", Voice: "af_heart", Speed: 1.0}, logger)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(eng.Close)

	h := NewHandler(eng, logger.WithField("component", "httpapi"))
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSpeakEndpointRejectsEmptyText(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(speakRequest{Text: ""})
	resp, err := http.Post(srv.URL+"/speak", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /speak: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty text, got %d", resp.StatusCode)
	}
}

func TestSpeakEndpointQueuesChunks(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(speakRequest{Text: "Hello there. This is a test."})
	resp, err := http.Post(srv.URL+"/speak", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /speak: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got speakResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.QueuedChunks == 0 {
		t.Fatalf("expected queued chunks > 0")
	}
}

func TestStatusEndpointAfterStop(t *testing.T) {
	srv := newTestServer(t)
	http.Post(srv.URL+"/speak", "application/json", bytes.NewReader([]byte(`{"text":"One. Two."}`)))
	resp, err := http.Post(srv.URL+"/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /stop: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	var got statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if got.State != engine.StateIdle {
		t.Fatalf("expected idle after stop, got %s", got.State)
	}
}

func TestSetConfigRejectsInvalidSpeed(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(configResponse{Speed: 9.9})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/config", bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /config: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid speed, got %d", resp.StatusCode)
	}
}

func TestPreviewSplitEndpoint(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(previewSplitRequest{Text: "First sentence. Second sentence."})
	resp, err := http.Post(srv.URL+"/preview_split", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /preview_split: %v", err)
	}
	defer resp.Body.Close()
	var got previewSplitResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Chunks) == 0 {
		t.Fatalf("expected non-empty chunks")
	}
}
