package engine

import (
	"bytes"
	"context"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"nayru/internal/wavcodec"
)

// googleProvider is the alternate Synthesizer backed by Cloud Text-to-
// Speech, adapted from the teacher's GoogleClassicTTSEngine: same client
// and AudioConfig construction, but synthesizing LINEAR16 straight into
// memory rather than caching MP3 files to disk (design note §9).
type googleProvider struct {
	client *texttospeech.Client
}

func newGoogleProvider(cfg Config) (*googleProvider, error) {
	// Credentials resolve via ADC / GOOGLE_APPLICATION_CREDENTIALS; cfg.GoogleCred
	// is exported for callers that want to point at a specific key file via env.
	ctx := context.Background()
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, newError(CodeInvalidConfig, "google tts client: %s", err)
	}
	return &googleProvider{client: client}, nil
}

func (p *googleProvider) Synthesize(ctx context.Context, chunk Chunk) (Clip, error) {
	audioCfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_LINEAR16,
	}
	// Chirp voices don't support speakingRate; only set it otherwise, per
	// the teacher's GoogleClassicTTSEngine.Speak.
	if !strings.Contains(strings.ToLower(chunk.Voice), "chirp") {
		audioCfg.SpeakingRate = float64(chunk.Speed)
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk.Text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: googleLanguageCode(chunk.Voice),
			Name:         chunk.Voice,
		},
		AudioConfig: audioCfg,
	}

	resp, err := p.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return Clip{}, &upstreamError{transient: googleErrTransient(err), err: err}
	}

	// LINEAR16 responses from Cloud TTS are WAV-wrapped PCM16.
	pcm, err := wavcodec.Decode(bytes.NewReader(resp.AudioContent))
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

func googleLanguageCode(voice string) string {
	if len(voice) >= 5 && voice[2] == '-' {
		return voice[:5]
	}
	return "en-US"
}

func googleErrTransient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Internal:
		return true
	default:
		return false
	}
}
