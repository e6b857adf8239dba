package workflow

import (
	"errors"
	"testing"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name string
		path []Stage
		ok   bool
	}{
		{"upload to configure", []Stage{StageConfigure}, true},
		{"configure back to upload", []Stage{StageConfigure, StageUpload}, true},
		{"upload straight to review", []Stage{StageReview}, false},
		{"upload to analyzing", []Stage{StageAnalyzing}, false},
		{"analyzing cannot exit to review by request", []Stage{StageConfigure, StageAnalyzing, StageReview}, false},
		{"analyzing cannot exit to upload by request", []Stage{StageConfigure, StageAnalyzing, StageUpload}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController()
			var err error
			for _, stage := range tc.path {
				if err = c.Transition(stage); err != nil {
					break
				}
			}
			if tc.ok && err != nil {
				t.Errorf("expected path to be legal, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected an illegal step in the path")
			}
		})
	}
}

func TestEditingStagesRoundtripFromReview(t *testing.T) {
	c := NewController()
	c.Configure(ModeFast, "wedding", "u1")
	c.Transition(StageConfigure)
	c.StartAnalysis()
	if err := c.CompleteAnalysis(); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	for _, edit := range []Stage{StageFaceRetouch, StageAIEdit} {
		if err := c.Transition(edit); err != nil {
			t.Fatalf("review -> %s failed: %v", edit, err)
		}
		if err := c.Transition(StageConfigure); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected %s -> configure to be illegal, got %v", edit, err)
		}
		if err := c.Transition(StageReview); err != nil {
			t.Fatalf("%s -> review failed: %v", edit, err)
		}
	}
}

func TestTransition_UnknownStage(t *testing.T) {
	c := NewController()
	err := c.Transition(Stage("limbo"))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransition_FailureKeepsStage(t *testing.T) {
	c := NewController()
	_ = c.Transition(StageReview)
	if c.Stage() != StageUpload {
		t.Errorf("expected stage unchanged after illegal transition, got %s", c.Stage())
	}
}

func TestConfigure(t *testing.T) {
	c := NewController()
	if err := c.Configure(ModeFast, "wedding", "u1"); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if c.Mode() != ModeFast || c.EventType() != "wedding" || c.UserID() != "u1" {
		t.Error("expected configuration recorded")
	}
	if c.Stage() != StageUpload {
		t.Error("expected configure not to change the stage")
	}

	var verr *album.ValidationError
	if err := c.Configure(Mode("turbo"), "", ""); !errors.As(err, &verr) {
		t.Errorf("expected validation error for unknown mode, got %v", err)
	}
}

func TestStartAnalysis(t *testing.T) {
	c := NewController()
	c.Configure(ModeFast, "wedding", "u1")

	// starting from upload is illegal
	if err := c.StartAnalysis(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected invalid transition from upload, got %v", err)
	}

	if err := c.Transition(StageConfigure); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if err := c.StartAnalysis(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if c.Stage() != StageAnalyzing {
		t.Errorf("expected analyzing, got %s", c.Stage())
	}
}

func TestStartAnalysis_ValidatesConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		eventType string
		userID    string
		field     string
	}{
		{"no mode", "", "wedding", "u1", "culling_mode"},
		{"no event type", ModeFast, "", "u1", "event_type"},
		{"no user", ModeDeep, "wedding", "", "user_id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController()
			c.Configure(tc.mode, tc.eventType, tc.userID)
			if err := c.Transition(StageConfigure); err != nil {
				t.Fatalf("transition failed: %v", err)
			}

			err := c.StartAnalysis()
			var verr *album.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, verr.Field)
			}
			if c.Stage() != StageConfigure {
				t.Errorf("expected stage untouched on validation failure, got %s", c.Stage())
			}
		})
	}
}

func TestStartAnalysis_ManualNeedsNoContext(t *testing.T) {
	c := NewController()
	c.Configure(ModeManual, "", "")
	if err := c.Transition(StageConfigure); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if err := c.StartAnalysis(); err != nil {
		t.Errorf("expected manual mode to start without event type or user, got %v", err)
	}
}

func TestCompleteAndFailAnalysis(t *testing.T) {
	c := NewController()
	c.Configure(ModeFast, "wedding", "u1")
	c.Transition(StageConfigure)
	c.StartAnalysis()

	if err := c.CompleteAnalysis(); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if c.Stage() != StageReview {
		t.Errorf("expected review, got %s", c.Stage())
	}

	// complete outside analyzing is illegal
	if err := c.CompleteAnalysis(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected invalid transition, got %v", err)
	}

	c2 := NewController()
	c2.Configure(ModeFast, "wedding", "u1")
	c2.Transition(StageConfigure)
	c2.StartAnalysis()
	if err := c2.FailAnalysis(); err != nil {
		t.Fatalf("fail rollback failed: %v", err)
	}
	if c2.Stage() != StageUpload {
		t.Errorf("expected rollback to upload, got %s", c2.Stage())
	}
}

func TestReset(t *testing.T) {
	c := NewController()
	c.Configure(ModeDeep, "wedding", "u1")
	c.Transition(StageConfigure)

	c.Reset()

	if c.Stage() != StageUpload {
		t.Errorf("expected upload after reset, got %s", c.Stage())
	}
	if c.Mode() != "" || c.EventType() != "" || c.UserID() != "" {
		t.Error("expected configuration cleared after reset")
	}
}
