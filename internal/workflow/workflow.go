// Package workflow implements the finite state machine that drives the
// culling pipeline: upload -> configure -> analyzing -> review, with the
// review-adjacent editing stages and a single global reset escape.
package workflow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
)

// Stage identifies the active step of the culling pipeline.
type Stage string

const (
	StageUpload      Stage = "upload"
	StageConfigure   Stage = "configure"
	StageAnalyzing   Stage = "analyzing"
	StageReview      Stage = "review"
	StageFaceRetouch Stage = "face-retouch"
	StageAIEdit      Stage = "ai-edit"
)

// Valid returns true for known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageUpload, StageConfigure, StageAnalyzing, StageReview, StageFaceRetouch, StageAIEdit:
		return true
	}
	return false
}

// Mode selects which analysis entry point a batch is routed to. Manual mode
// skips the external analysis entirely.
type Mode string

const (
	ModeFast   Mode = "fast"
	ModeDeep   Mode = "deep"
	ModeManual Mode = "manual"
)

// Valid returns true for known culling modes.
func (m Mode) Valid() bool {
	return m == ModeFast || m == ModeDeep || m == ModeManual
}

// ErrInvalidTransition is returned when a requested stage change is not in the
// legal transition table.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// transitions is the legal table for user-requested stage changes. The
// analyzing stage has no entries: leaving it is reserved for the orchestrator
// via CompleteAnalysis and FailAnalysis.
var transitions = map[Stage][]Stage{
	StageUpload:      {StageConfigure},
	StageConfigure:   {StageUpload, StageAnalyzing},
	StageReview:      {StageConfigure, StageFaceRetouch, StageAIEdit},
	StageFaceRetouch: {StageReview},
	StageAIEdit:      {StageReview},
}

// Controller owns the current pipeline stage and the configuration gathered
// during the configure step. All methods are safe for concurrent use.
type Controller struct {
	mu        sync.RWMutex
	stage     Stage
	mode      Mode
	eventType string
	userID    string
}

// NewController creates a controller in the upload stage.
func NewController() *Controller {
	return &Controller{stage: StageUpload}
}

// Stage returns the current stage.
func (c *Controller) Stage() Stage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stage
}

// Mode returns the configured culling mode.
func (c *Controller) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// EventType returns the configured event context.
func (c *Controller) EventType() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eventType
}

// UserID returns the signed-in user identity.
func (c *Controller) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// Configure records culling mode, event context and user identity. It does not
// change the stage; validation happens when analysis starts.
func (c *Controller) Configure(mode Mode, eventType, userID string) error {
	if mode != "" && !mode.Valid() {
		return &album.ValidationError{Field: "culling_mode", Message: fmt.Sprintf("unknown mode %q", mode)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	c.eventType = eventType
	c.userID = userID
	return nil
}

// Transition requests an explicit stage change. Returns ErrInvalidTransition
// if the move is not in the legal table.
func (c *Controller) Transition(to Stage) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, to)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, next := range transitions[c.stage] {
		if next == to {
			c.stage = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.stage, to)
}

// StartAnalysis validates the configure-stage preconditions and moves to
// analyzing. On a validation failure the stage is left untouched.
func (c *Controller) StartAnalysis() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage != StageConfigure {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.stage, StageAnalyzing)
	}
	if c.mode == "" {
		return &album.ValidationError{Field: "culling_mode", Message: "a culling mode must be chosen"}
	}
	if c.mode != ModeManual {
		if c.eventType == "" {
			return &album.ValidationError{Field: "event_type", Message: "an event type must be chosen"}
		}
		if c.userID == "" {
			return &album.ValidationError{Field: "user_id", Message: "a signed-in user is required"}
		}
	}
	c.stage = StageAnalyzing
	return nil
}

// CompleteAnalysis advances analyzing -> review. Called by the orchestrator on
// batch success, and directly for manual mode which needs no analysis.
func (c *Controller) CompleteAnalysis() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage != StageAnalyzing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.stage, StageReview)
	}
	c.stage = StageReview
	return nil
}

// FailAnalysis rolls analyzing back to upload so a failed batch cannot leave
// the pipeline stuck in analyzing.
func (c *Controller) FailAnalysis() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage != StageAnalyzing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.stage, StageUpload)
	}
	c.stage = StageUpload
	return nil
}

// Reset unconditionally returns to the upload stage and clears configuration.
// This is the only global escape transition; callers are responsible for
// clearing the photo store and derived collections alongside it.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stage = StageUpload
	c.mode = ""
	c.eventType = ""
	c.userID = ""
}
