// Package cliclient is the thin HTTP client Nayru's CLI subcommands use
// to talk to a running `nayru serve` instance, analogous to how the
// teacher's app layer called straight into its in-process TTS engine,
// but over HTTP since the server and CLI here are separate processes.
package cliclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is a thin wrapper around the Nayru HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client against the given server address (e.g. "127.0.0.1:7890").
func New(addr string) *Client {
	return &Client{
		baseURL: "http://" + addr,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ErrUnreachable is returned when the server cannot be reached at all,
// mapped by the CLI to exit code 1 (connection failure).
type ErrUnreachable struct{ Err error }

func (e *ErrUnreachable) Error() string { return fmt.Sprintf("nayru server unreachable: %v", e.Err) }
func (e *ErrUnreachable) Unwrap() error { return e.Err }

// ErrAPI is returned when the server responded with a non-2xx status,
// mapped by the CLI to exit code 2 (invalid argument / rejected request).
type ErrAPI struct {
	Status  int
	Message string
}

func (e *ErrAPI) Error() string { return fmt.Sprintf("nayru server: %s (status %d)", e.Message, e.Status) }

func (c *Client) do(method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &ErrUnreachable{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &ErrAPI{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// SpeakResult mirrors the server's /speak response.
type SpeakResult struct {
	OK           bool   `json:"ok"`
	QueuedChunks int    `json:"queued_chunks"`
	UtteranceID  string `json:"utterance_id,omitempty"`
}

// Speak sends text to the server for synthesis and playback. voice, when
// non-empty, overrides the server's configured voice for this call only.
func (c *Client) Speak(text, voice string) (SpeakResult, error) {
	var out SpeakResult
	body := map[string]string{"text": text}
	if voice != "" {
		body["voice"] = voice
	}
	err := c.do(http.MethodPost, "/speak", body, &out)
	return out, err
}

// Stop cancels the current utterance.
func (c *Client) Stop() error { return c.do(http.MethodPost, "/stop", nil, nil) }

// Pause pauses playback.
func (c *Client) Pause() error { return c.do(http.MethodPost, "/pause", nil, nil) }

// Resume resumes playback.
func (c *Client) Resume() error { return c.do(http.MethodPost, "/resume", nil, nil) }

// Skip drops the currently playing clip.
func (c *Client) Skip() error { return c.do(http.MethodPost, "/skip", nil, nil) }

// Status mirrors the server's /status response.
type Status struct {
	State                string  `json:"state"`
	QueueLength          int     `json:"queue_length"`
	Voice                string  `json:"voice"`
	CurrentSentenceIndex *int    `json:"current_sentence_index"`
	TotalSentences       int     `json:"total_sentences"`
	Speed                float32 `json:"speed"`
	LastError            string  `json:"last_error,omitempty"`
}

// Status fetches the current playback status.
func (c *Client) Status() (Status, error) {
	var out Status
	err := c.do(http.MethodGet, "/status", nil, &out)
	return out, err
}
