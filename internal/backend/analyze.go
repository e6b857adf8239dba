package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/workflow"
)

// AnalyzeConcurrency is the fixed bound on in-flight analysis requests.
const AnalyzeConcurrency = 2

// ProgressFunc is invoked at most once per photo, in completion order, with
// the running processed count, the filename just completed, and the updated
// record when the backend returned one.
type ProgressFunc func(processed int, filename string, updated *album.Photo)

// AnalyzeOptions carries the batch-wide parameters of one analysis run.
type AnalyzeOptions struct {
	Mode       workflow.Mode
	UserID     string
	EventType  string
	AlbumID    string
	OnProgress ProgressFunc
}

// endpointFor routes the two culling modes to their backend entry points.
func endpointFor(mode workflow.Mode) (string, error) {
	switch mode {
	case workflow.ModeFast:
		return "analyze", nil
	case workflow.ModeDeep:
		return "deep-analyze", nil
	}
	return "", fmt.Errorf("mode %q has no analysis endpoint", mode)
}

// photoRecord is the backend's wire representation of an analyzed photo.
type photoRecord struct {
	Filename        string             `json:"filename"`
	AIScore         float64            `json:"ai_score"`
	ScoreType       string             `json:"score_type"`
	Tags            []string           `json:"tags"`
	ColorLabel      string             `json:"color_label,omitempty"`
	Caption         string             `json:"caption,omitempty"`
	EventHighlights []string           `json:"event_highlights,omitempty"`
	Flags           []string           `json:"flags,omitempty"`
	Faces           []album.Face       `json:"faces,omitempty"`
	FaceSummary     *album.FaceSummary `json:"face_summary,omitempty"`
	Embedding       []float32          `json:"embedding,omitempty"`
	PHash           string             `json:"phash,omitempty"`
	Approved        *bool              `json:"approved,omitempty"`
}

// apply merges the wire record onto a copy of the uploaded photo, preserving
// identity and UI-local fields the backend knows nothing about.
func (r *photoRecord) apply(base album.Photo) album.Photo {
	p := base.Clone()
	p.AIScore = r.AIScore
	p.ScoreType = r.ScoreType
	for _, t := range r.Tags {
		p.Tags.Add(t)
	}
	if label := album.ColorLabel(r.ColorLabel); label.Valid() {
		p.ColorLabel = label
	}
	p.Caption = r.Caption
	p.Highlights = r.EventHighlights
	p.Flags = r.Flags
	p.Faces = r.Faces
	p.FaceSummary = r.FaceSummary
	if len(r.Embedding) > 0 {
		p.Embedding = r.Embedding
	}
	if r.PHash != "" {
		p.PHash = r.PHash
	}
	p.Approved = r.Approved
	return p
}

type analyzeResult struct {
	index int
	photo album.Photo
	err   error
}

// Analyze submits every photo to the analysis endpoint for the configured
// culling mode with at most AnalyzeConcurrency requests in flight. OnProgress
// fires once per completed photo in arbitrary completion order. On success the
// returned slice is the full replacement collection; any per-photo rejection
// fails the whole batch.
func (c *Client) Analyze(ctx context.Context, photos []album.Photo, opts AnalyzeOptions) ([]album.Photo, error) {
	endpoint, err := endpointFor(opts.Mode)
	if err != nil {
		return nil, err
	}

	results := make(chan analyzeResult, len(photos))
	semaphore := make(chan struct{}, AnalyzeConcurrency)
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	processed := 0
	reportProgress := func(filename string, updated *album.Photo) {
		progressMu.Lock()
		defer progressMu.Unlock()
		processed++
		if opts.OnProgress != nil {
			opts.OnProgress(processed, filename, updated)
		}
	}

	for i := range photos {
		wg.Add(1)
		go func(idx int, p album.Photo) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				results <- analyzeResult{index: idx, err: ctx.Err()}
				return
			}

			record, err := doPostMultipart[photoRecord](ctx, c, endpoint, map[string]string{
				"user_id":      opts.UserID,
				"event_type":   opts.EventType,
				"culling_mode": string(opts.Mode),
				"album_id":     opts.AlbumID,
				"filename":     p.Filename,
			}, []multipartFile{{field: "file", filename: p.Filename, path: p.OriginalPath}})
			if err != nil {
				results <- analyzeResult{index: idx, err: fmt.Errorf("analyzing %s: %w", p.Filename, err)}
				reportProgress(p.Filename, nil)
				return
			}

			updated := record.apply(p)
			results <- analyzeResult{index: idx, photo: updated}
			reportProgress(p.Filename, &updated)
		}(i, photos[i])
	}

	wg.Wait()
	close(results)

	final := make([]album.Photo, len(photos))
	copy(final, photos)
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		final[r.index] = r.photo
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return final, nil
}
