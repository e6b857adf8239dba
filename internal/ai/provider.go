// Package ai provides optional vision-model captioning for photos the
// analysis pass left without a caption. Providers are interchangeable; the
// serve command picks whichever one has credentials configured.
package ai

import "context"

// Caption is the structured captioning result for one photo.
type Caption struct {
	// Caption is a short, factual one-sentence description.
	Caption string `json:"caption"`
	// Highlights are event-context tags drawn from the configured vocabulary.
	Highlights []string `json:"event_highlights,omitempty"`
	// Flags mark obvious technical or content problems.
	Flags []string `json:"flags,omitempty"`
}

// Provider defines the interface for captioning backends.
type Provider interface {
	Name() string
	CaptionPhoto(ctx context.Context, imageData []byte, eventType string, highlightVocab []string) (*Caption, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}
