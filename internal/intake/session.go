package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
	"go.uber.org/zap"
)

// Step identifies one of the six ordered intake steps.
type Step int

const (
	// StepProfile collects identity and background fields.
	StepProfile Step = 1
	// StepContext collects pre-workshop goals and the breakthrough.
	StepContext Step = 2
	// StepBuild collects the build summary and the supporting document.
	StepBuild Step = 3
	// StepTechnical collects the how-it-works description and screenshots.
	StepTechnical Step = 4
	// StepResults collects metrics, audience, and the pull quote.
	StepResults Step = 5
	// StepSettings collects generation configuration and consent flags.
	StepSettings Step = 6
)

// AttachmentKind distinguishes the two file attachment slots.
type AttachmentKind string

const (
	AttachmentScreenshot AttachmentKind = "screenshot"
	AttachmentDocument   AttachmentKind = "document"
)

var (
	// ErrGenerationInProgress rejects interaction while the provider call is in flight.
	ErrGenerationInProgress = errors.New("intake: generation in progress")
	// ErrGenerationFailed is the single recoverable failure surfaced when the
	// provider call or its response contract fails. The draft is unchanged and
	// the caller may retry.
	ErrGenerationFailed = errors.New("intake: generation failed")
	// ErrSessionClosed rejects interaction with a cancelled or completed session.
	ErrSessionClosed = errors.New("intake: session closed")
	// ErrUnknownAttachmentKind rejects attachment kinds outside screenshot/document.
	ErrUnknownAttachmentKind = errors.New("intake: unknown attachment kind")

	errMissingStore     = errors.New("record store is required")
	errMissingGenerator = errors.New("generator is required")
)

// Generator produces an output bundle for a completed entry. The provider is
// non-deterministic: two calls with identical input yield different prose.
type Generator interface {
	Generate(ctx context.Context, entry testimonial.Entry) (testimonial.Outputs, error)
}

// Recorder is the slice of the record store the state machine needs.
type Recorder interface {
	Upsert(entry testimonial.Entry) error
}

// Session is the intake state machine for a single draft. Navigation never
// validates field completeness: partial and empty fields are legal at every
// step, and all correctness requirements are pushed to generation time. The
// mutex exists because the HTTP surface delivers mutation and finalize on
// different goroutines; the provider call itself runs outside the lock with
// the generating flag guarding re-entry.
type Session struct {
	mu         sync.Mutex
	step       Step
	generating bool
	cancelled  bool
	completed  bool
	draft      Draft
	store      Recorder
	generator  Generator
	logger     *zap.Logger
}

// SessionConfig describes the dependencies of a Session.
type SessionConfig struct {
	Store     Recorder
	Generator Generator
	Logger    *zap.Logger
}

// NewSession starts intake at step one with the provided draft.
func NewSession(cfg SessionConfig, draft Draft) (*Session, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("intake: %w", errMissingStore)
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("intake: %w", errMissingGenerator)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		step:      StepProfile,
		draft:     draft.clone(),
		store:     cfg.Store,
		generator: cfg.Generator,
		logger:    logger,
	}, nil
}

// CurrentStep reports the active step.
func (s *Session) CurrentStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Generating reports whether a provider call is in flight.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// Snapshot returns a copy of the current draft.
func (s *Session) Snapshot() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.clone()
}

// Advance moves to the next step, clamped at the final step. Completeness is
// never checked.
func (s *Session) Advance() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.interactive(); err != nil {
		return s.step, err
	}
	if s.step < StepSettings {
		s.step++
	}
	return s.step, nil
}

// Retreat moves to the previous step. At step one it is redefined as cancel:
// the in-progress draft is discarded and the session closes.
func (s *Session) Retreat() (Step, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.interactive(); err != nil {
		return s.step, false, err
	}
	if s.step == StepProfile {
		s.cancelled = true
		return s.step, true, nil
	}
	s.step--
	return s.step, false, nil
}

// Mutate merges a partial set of field values into the draft. Merging is
// legal at any step; fields absent from the patch keep their values.
func (s *Session) Mutate(patch FieldPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.interactive(); err != nil {
		return err
	}
	patch.applyTo(&s.draft)
	return nil
}

// AttachFile stores an encoded file representation. Screenshot results may
// arrive concurrently and out of order, so each is appended independently.
// A screenshot beyond the cap is rejected without error; the boolean lets the
// caller surface feedback without being forced to. A document replaces any
// previous one.
func (s *Session) AttachFile(kind AttachmentKind, encodedContent string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.interactive(); err != nil {
		return false, err
	}
	switch kind {
	case AttachmentScreenshot:
		if len(s.draft.Screenshots) >= testimonial.MaxScreenshots {
			return false, nil
		}
		s.draft.Screenshots = append(s.draft.Screenshots, encodedContent)
		return true, nil
	case AttachmentDocument:
		s.draft.DocumentData = encodedContent
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownAttachmentKind, kind)
	}
}

// RemoveScreenshot removes the screenshot at the given position. An
// out-of-range index is a no-op reported through the boolean.
func (s *Session) RemoveScreenshot(index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.interactive(); err != nil {
		return false, err
	}
	if index < 0 || index >= len(s.draft.Screenshots) {
		return false, nil
	}
	s.draft.Screenshots = append(s.draft.Screenshots[:index], s.draft.Screenshots[index+1:]...)
	return true, nil
}

// Finalize enters the generating state, invokes the generator with the entry
// built from the draft, and on success attaches the bundle and persists the
// whole record. On any failure the draft is left exactly as it was and the
// session returns to the settings step; the caller may retry without limit.
func (s *Session) Finalize(ctx context.Context) (testimonial.Entry, error) {
	s.mu.Lock()
	if err := s.interactive(); err != nil {
		s.mu.Unlock()
		return testimonial.Entry{}, err
	}
	entry, err := s.draft.BuildEntry()
	if err != nil {
		s.mu.Unlock()
		return testimonial.Entry{}, err
	}
	s.generating = true
	s.mu.Unlock()

	outputs, generationErr := s.generator.Generate(ctx, entry)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false

	if generationErr != nil {
		s.logger.Warn("generation failed",
			zap.String("entry_id", entry.ID),
			zap.Error(generationErr))
		return testimonial.Entry{}, fmt.Errorf("%w: %v", ErrGenerationFailed, generationErr)
	}

	entry.Outputs = &outputs
	if err := s.store.Upsert(entry); err != nil {
		s.logger.Error("failed to persist generated entry",
			zap.String("entry_id", entry.ID),
			zap.Error(err))
		return testimonial.Entry{}, err
	}

	s.completed = true
	s.logger.Info("entry finalized", zap.String("entry_id", entry.ID))
	return entry, nil
}

func (s *Session) interactive() error {
	if s.cancelled || s.completed {
		return ErrSessionClosed
	}
	if s.generating {
		return ErrGenerationInProgress
	}
	return nil
}
