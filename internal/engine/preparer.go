package engine

import "nayru/internal/textprep"

// prepare turns raw text into the Chunks for one epoch, stamping every
// Chunk with the Voice/Speed config snapshot taken at submission time so
// a concurrent set_config cannot split one utterance across two configs
// (spec.md §5, config atomicity).
func prepare(epoch uint64, text string, cfg Config, prepCfg textprep.Config) []Chunk {
	pieces := textprep.Prepare(text, prepCfg)
	chunks := make([]Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = Chunk{
			Epoch: epoch,
			Index: i,
			Text:  p,
			Voice: cfg.Voice,
			Speed: cfg.Speed,
		}
	}
	return chunks
}
