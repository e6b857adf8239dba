package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// Gemini 2.5 Flash pricing per 1M tokens.
const (
	geminiInputPrice  = 0.30
	geminiOutputPrice = 2.50
)

type GeminiProvider struct {
	client *genai.Client
	usage  Usage
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) GetUsage() *Usage {
	return &p.usage
}

func (p *GeminiProvider) ResetUsage() {
	p.usage = Usage{}
}

func (p *GeminiProvider) trackUsage(inputTokens, outputTokens int32) {
	p.usage.InputTokens += int(inputTokens)
	p.usage.OutputTokens += int(outputTokens)
	p.usage.TotalCost += float64(inputTokens) / 1_000_000 * geminiInputPrice
	p.usage.TotalCost += float64(outputTokens) / 1_000_000 * geminiOutputPrice
}

func (p *GeminiProvider) CaptionPhoto(ctx context.Context, imageData []byte, eventType string, highlightVocab []string) (*Caption, error) {
	const maxRetries = 3

	resized, err := ResizeImage(imageData, maxCaptionImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	systemPrompt := buildCaptionPrompt(eventType, highlightVocab)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: systemPrompt},
				{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastErr error
	for range maxRetries {
		result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini API error: %w", err)
		}

		if result.UsageMetadata != nil {
			p.trackUsage(result.UsageMetadata.PromptTokenCount, result.UsageMetadata.CandidatesTokenCount)
		}

		content := result.Text()
		if content == "" {
			return nil, errors.New("no response from Gemini")
		}

		var caption Caption
		if err := json.Unmarshal([]byte(content), &caption); err != nil {
			lastErr = err
			contents = append(contents,
				&genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: content}},
				},
				&genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: fmt.Sprintf("JSON parse error: %v. Reply with valid JSON only.", err)}},
				},
			)
			continue
		}

		caption.Highlights = filterHighlights(caption.Highlights, highlightVocab)
		return &caption, nil
	}

	return nil, fmt.Errorf("failed to parse caption JSON after %d attempts: %w", maxRetries, lastErr)
}
