package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"nayru/internal/engine"
	"nayru/internal/textprep"
)

// Handler binds the Engine to HTTP, mirroring the teacher pack's
// api.Handler (Bobarinn-video-genie's internal/api/handlers.go).
type Handler struct {
	eng    *engine.Engine
	logger *logrus.Entry
}

// NewHandler builds a Handler for the given Engine.
func NewHandler(eng *engine.Engine, logger *logrus.Entry) *Handler {
	return &Handler{eng: eng, logger: logger}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func statusFor(err error) int {
	e, ok := err.(*engine.Error)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case engine.CodeInvalidInput, engine.CodeInvalidConfig:
		return http.StatusBadRequest
	case engine.CodeUpstream, engine.CodeAllChunksFailed, engine.CodeSink:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type speakRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

type speakResponse struct {
	OK           bool   `json:"ok"`
	QueuedChunks int    `json:"queued_chunks"`
	UtteranceID  string `json:"utterance_id,omitempty"`
}

// Speak handles POST /speak.
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.eng.Speak(req.Text, req.Voice)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, speakResponse{OK: true, QueuedChunks: res.QueuedChunks, UtteranceID: res.UtteranceID})
}

type okResponse struct {
	OK bool `json:"ok"`
}

// Stop handles POST /stop.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	h.eng.Stop()
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

// Pause handles POST /pause.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.eng.Pause()
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

// Resume handles POST /resume.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.eng.Resume()
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

// Skip handles POST /skip.
func (h *Handler) Skip(w http.ResponseWriter, r *http.Request) {
	h.eng.Skip()
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

type statusResponse struct {
	State                engine.State `json:"state"`
	QueueLength          int          `json:"queue_length"`
	Voice                string       `json:"voice"`
	CurrentSentenceIndex *int         `json:"current_sentence_index"`
	TotalSentences       int          `json:"total_sentences"`
	Speed                float32      `json:"speed"`
	LastError            string       `json:"last_error,omitempty"`
}

// Status handles GET /status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.eng.Status()
	respondJSON(w, http.StatusOK, statusResponse{
		State:                snap.State,
		QueueLength:          snap.QueueLength,
		Voice:                snap.Config.Voice,
		CurrentSentenceIndex: snap.CurrentIndex,
		TotalSentences:       snap.Total,
		Speed:                snap.Config.Speed,
		LastError:            snap.LastError,
	})
}

type configResponse struct {
	Provider  string  `json:"provider"`
	KokoroURL string  `json:"kokoro_url"`
	Voice     string  `json:"voice"`
	Speed     float32 `json:"speed"`
}

func toConfigResponse(cfg engine.Config) configResponse {
	return configResponse{Provider: cfg.Provider, KokoroURL: cfg.KokoroURL, Voice: cfg.Voice, Speed: cfg.Speed}
}

// GetConfig handles GET /config.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toConfigResponse(h.eng.GetConfig()))
}

// SetConfig handles PUT /config. Only fields present in the request body
// are changed; the merge with the live config happens in Engine.SetConfig.
func (h *Handler) SetConfig(w http.ResponseWriter, r *http.Request) {
	var patch configResponse
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.eng.SetConfig(engine.Config{
		Provider:  patch.Provider,
		KokoroURL: patch.KokoroURL,
		Voice:     patch.Voice,
		Speed:     patch.Speed,
	})
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toConfigResponse(cfg))
}

type previewSplitRequest struct {
	Text string `json:"text"`
}

type previewSplitResponse struct {
	Chunks []string `json:"chunks"`
}

// PreviewSplit handles POST /preview_split: runs the Preparer without
// dispatching to the Synthesizer, letting a client inspect chunking
// decisions before committing to a Speak call (supplemental endpoint,
// SPEC_FULL.md §"Engine façade & HTTP API").
func (h *Handler) PreviewSplit(w http.ResponseWriter, r *http.Request) {
	var req previewSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	chunks := textprep.Prepare(req.Text, textprep.DefaultConfig)
	respondJSON(w, http.StatusOK, previewSplitResponse{Chunks: chunks})
}
