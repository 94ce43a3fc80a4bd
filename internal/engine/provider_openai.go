package engine

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"nayru/internal/wavcodec"
)

// openaiProvider talks to the OpenAI-compatible "/v1/audio/speech"
// contract local TTS servers such as Kokoro implement (spec.md §6).
type openaiProvider struct {
	client *openai.Client
}

func newOpenAIProvider(cfg Config) (*openaiProvider, error) {
	if strings.TrimSpace(cfg.KokoroURL) == "" {
		return nil, newError(CodeInvalidConfig, "kokoro_url is required for provider %q", cfg.Provider)
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = strings.TrimRight(cfg.KokoroURL, "/") + "/v1"
	return &openaiProvider{client: openai.NewClientWithConfig(conf)}, nil
}

func (p *openaiProvider) Synthesize(ctx context.Context, chunk Chunk) (Clip, error) {
	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          chunk.Text,
		Voice:          openai.SpeechVoice(chunk.Voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
		Speed:          float64(chunk.Speed),
	})
	if err != nil {
		return Clip{}, classifyOpenAIErr(err)
	}
	defer resp.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp); err != nil {
		return Clip{}, &upstreamError{transient: true, err: err}
	}

	pcm, err := wavcodec.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return Clip{}, &upstreamError{transient: false, err: err}
	}

	return Clip{
		Epoch:      chunk.Epoch,
		Index:      chunk.Index,
		SampleRate: pcm.SampleRate,
		Channels:   pcm.Channels,
		Samples:    pcm.Samples,
	}, nil
}

// classifyOpenAIErr maps go-openai's APIError status codes onto the
// transient/fatal split the retry loop in provider.go acts on: 5xx and
// network errors are worth retrying, 4xx are not.
func classifyOpenAIErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		transient := apiErr.HTTPStatusCode == 0 || apiErr.HTTPStatusCode >= http.StatusInternalServerError
		return &upstreamError{transient: transient, err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		transient := reqErr.HTTPStatusCode == 0 || reqErr.HTTPStatusCode >= http.StatusInternalServerError
		return &upstreamError{transient: transient, err: err}
	}
	return &upstreamError{transient: true, err: err}
}
