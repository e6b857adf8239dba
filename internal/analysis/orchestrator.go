// Package analysis drives one analysis batch against the AI backend: it
// streams per-photo merges into the store, performs the authoritative bulk
// replace on completion, and advances or rolls back the workflow stage.
package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/backend"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/workflow"
)

// personGroupDelay is how long after batch completion the person-group
// recompute fires, so it observes the fully merged store rather than a
// partially updated one.
const personGroupDelay = 2 * time.Second

// Analyzer is the slice of the backend client the orchestrator needs.
type Analyzer interface {
	Analyze(ctx context.Context, photos []album.Photo, opts backend.AnalyzeOptions) ([]album.Photo, error)
}

// Progress is the externally visible state of the current batch. Processed is
// monotonically non-decreasing within one batch and resets to zero when a new
// batch starts.
type Progress struct {
	Processed    int    `json:"processed"`
	Total        int    `json:"total"`
	CurrentPhoto string `json:"current_photo"`
	Running      bool   `json:"running"`
	Error        string `json:"error,omitempty"`
}

// Orchestrator owns batch execution for one workspace. A workspace never runs
// more than one batch at a time. An in-flight batch runs to completion or
// failure; a workspace reset abandons it, discarding its results.
type Orchestrator struct {
	Events *Broadcaster

	store      *album.Store
	controller *workflow.Controller
	client     Analyzer

	// onSettled is invoked (after a short delay) once the final store state is
	// in place, so derived views such as person groups see the merged data.
	onSettled func()

	mu         sync.Mutex
	progress   Progress
	running    bool
	generation uint64
}

// New creates an orchestrator bound to one store and workflow controller.
// onSettled may be nil.
func New(store *album.Store, controller *workflow.Controller, client Analyzer, onSettled func()) *Orchestrator {
	return &Orchestrator{
		Events:     &Broadcaster{},
		store:      store,
		controller: controller,
		client:     client,
		onSettled:  onSettled,
	}
}

// Progress returns a snapshot of the current batch state.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Running reports whether a batch is in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Abandon supersedes any in-flight batch: its remaining merges and its
// terminal replace are discarded and progress returns to idle. The batch
// goroutine itself runs to completion against the backend; only its effects
// on the workspace are dropped. Called by the workspace reset escape.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.running = false
	o.progress = Progress{}
}

// Start validates preconditions via the workflow controller and launches the
// batch. Manual mode performs no analysis and moves straight to review. The
// batch itself runs on the calling goroutine; web handlers run Start in a
// goroutine and follow progress via Events.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.controller.StartAnalysis(); err != nil {
		return err
	}

	if o.controller.Mode() == workflow.ModeManual {
		if err := o.controller.CompleteAnalysis(); err != nil {
			return err
		}
		o.Events.Send(Event{Type: "completed", Message: "manual culling selected, analysis skipped"})
		o.scheduleSettled()
		return nil
	}

	return o.run(ctx)
}

// StartAsync is Start for web handlers: preconditions are validated
// synchronously so the caller can report them, while the batch itself runs on
// a background goroutine and is followed via Events.
func (o *Orchestrator) StartAsync(ctx context.Context) error {
	if err := o.controller.StartAnalysis(); err != nil {
		return err
	}

	if o.controller.Mode() == workflow.ModeManual {
		if err := o.controller.CompleteAnalysis(); err != nil {
			return err
		}
		o.Events.Send(Event{Type: "completed", Message: "manual culling selected, analysis skipped"})
		o.scheduleSettled()
		return nil
	}

	go o.run(ctx)
	return nil
}

func (o *Orchestrator) run(ctx context.Context) error {
	if o.client == nil {
		if err := o.controller.FailAnalysis(); err != nil {
			return err
		}
		return &album.PreconditionError{Message: "analysis backend not configured"}
	}

	photos := o.store.List()

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return &album.PreconditionError{Message: "an analysis batch is already running"}
	}
	o.running = true
	o.generation++
	gen := o.generation
	o.progress = Progress{Total: len(photos), Running: true}
	o.mu.Unlock()

	opts := backend.AnalyzeOptions{
		Mode:      o.controller.Mode(),
		UserID:    o.controller.UserID(),
		EventType: o.controller.EventType(),
		OnProgress: func(processed int, filename string, updated *album.Photo) {
			// Merge and publish under the lock, after confirming the batch has
			// not been superseded by a reset: a stale callback must not
			// repopulate a freshly cleared store.
			o.mu.Lock()
			defer o.mu.Unlock()
			if gen != o.generation {
				return
			}
			if updated != nil {
				o.store.Upsert(*updated)
			}
			if processed > o.progress.Processed {
				o.progress.Processed = processed
			}
			o.progress.CurrentPhoto = filename
			o.Events.Send(Event{Type: "progress", Data: o.progress})
		},
	}
	if len(photos) > 0 {
		opts.AlbumID = photos[0].AlbumID
	}

	final, err := o.client.Analyze(ctx, photos, opts)

	o.mu.Lock()
	if gen != o.generation {
		// Superseded by Abandon; the workspace was already returned to the
		// upload stage and the outcome is discarded.
		o.mu.Unlock()
		return nil
	}
	o.running = false
	o.progress.Running = false
	if err != nil {
		o.progress.Error = err.Error()
	} else {
		o.store.Replace(final)
	}
	o.mu.Unlock()

	if err != nil {
		// The batch is all-or-nothing: any rejection fails it and the stage
		// rolls back to upload. Already-merged per-photo updates stay in the
		// store so a retry does not restart from scratch.
		if ferr := o.controller.FailAnalysis(); ferr != nil {
			return ferr
		}
		o.Events.Send(Event{Type: "failed", Message: err.Error()})
		return err
	}

	if err := o.controller.CompleteAnalysis(); err != nil {
		return err
	}
	o.Events.Send(Event{Type: "completed", Data: o.Progress()})
	o.scheduleSettled()
	return nil
}

func (o *Orchestrator) scheduleSettled() {
	if o.onSettled == nil {
		return
	}
	time.AfterFunc(personGroupDelay, o.onSettled)
}
