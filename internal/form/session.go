package form

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"plantmatch/internal/model"
)

// DefaultAutoAdvanceDelay is how long a multiple-choice answer is shown
// before the session advances on its own.
const DefaultAutoAdvanceDelay = 500 * time.Millisecond

// Listener receives session lifecycle notifications. All methods are
// called while the session lock is held; implementations must not call
// back into the session.
type Listener interface {
	ProgressChanged(sessionID string, stepIndex, totalSteps int)
	ValidationFailed(sessionID string, questionID model.ID, message string)
	SessionCompleted(sessionID string, result *model.FormResult)
	SessionRestarted(sessionID string)
}

type noopListener struct{}

func (noopListener) ProgressChanged(string, int, int)           {}
func (noopListener) ValidationFailed(string, model.ID, string)  {}
func (noopListener) SessionCompleted(string, *model.FormResult) {}
func (noopListener) SessionRestarted(string)                    {}

// Input is the raw answer payload for the current question. Which field
// is read depends on the question type.
type Input struct {
	OptionID       model.ID `json:"optionId,omitempty"`
	SliderValue    *int     `json:"sliderValue,omitempty"`
	Value          string   `json:"value,omitempty"`
	SelectedValues []string `json:"selectedValues,omitempty"`
}

// advanceToken pins a scheduled auto-advance to the session state it was
// created under. A token from a torn-down or already-advanced session
// no longer matches and its callback is a no-op.
type advanceToken struct {
	epoch uint64
	step  int
}

// Session steps one visitor through the question sequence, collecting
// typed responses and per-question error state. It is safe for
// concurrent use.
type Session struct {
	ID        string
	VisitorID string

	cfg *model.QuizConfig

	mu         sync.Mutex
	step       int
	responses  map[model.ID]*model.Response
	errors     map[string]string
	finalizing bool
	result     *model.FormResult
	epoch      uint64
	timer      *time.Timer

	autoAdvanceDelay time.Duration
	listener         Listener
	onComplete       func(*model.FormResult) error
	now              func() time.Time
}

// NewSession creates a session over a validated configuration,
// positioned at the first question.
func NewSession(id, visitorID string, cfg *model.QuizConfig) *Session {
	return &Session{
		ID:               id,
		VisitorID:        visitorID,
		cfg:              cfg,
		responses:        make(map[model.ID]*model.Response),
		errors:           make(map[string]string),
		autoAdvanceDelay: DefaultAutoAdvanceDelay,
		listener:         noopListener{},
		now:              time.Now,
	}
}

// SetListener registers the lifecycle listener. Call before use.
func (s *Session) SetListener(l Listener) {
	if l != nil {
		s.listener = l
	}
}

// SetCompletionHook registers the downstream hook run when the last
// question is answered. A hook error keeps the session alive at its
// current step so the visitor can retry.
func (s *Session) SetCompletionHook(hook func(*model.FormResult) error) {
	s.onComplete = hook
}

// SetAutoAdvanceDelay overrides the multiple-choice auto-advance delay.
func (s *Session) SetAutoAdvanceDelay(d time.Duration) {
	s.autoAdvanceDelay = d
}

// SetClock overrides the timestamp source, for tests.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Session) TotalSteps() int {
	return len(s.cfg.Questions)
}

// StepIndex returns the current 0-based step. It equals TotalSteps once
// the session is complete.
func (s *Session) StepIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Complete reports whether the session has produced its result.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil
}

// CurrentQuestion returns the question awaiting an answer, or nil once
// the session is complete.
func (s *Session) CurrentQuestion() *model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentQuestionLocked()
}

func (s *Session) currentQuestionLocked() *model.Question {
	if s.step >= len(s.cfg.Questions) {
		return nil
	}
	return &s.cfg.Questions[s.step]
}

// Progress returns the completion percentage: answered steps over total
// steps. It hits exactly 100 only when the session is complete.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.step) / float64(len(s.cfg.Questions)) * 100
}

// Errors returns a copy of the per-question error map. Session-level
// submission failures appear under SubmissionErrorKey.
func (s *Session) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Responses returns a copy of the recorded responses.
func (s *Session) Responses() map[model.ID]*model.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.ID]*model.Response, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

// Result returns the finalize bundle, or nil while incomplete.
func (s *Session) Result() *model.FormResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Record stores the answer for the current question. It clears any
// existing error for that question; errors are only re-set by explicit
// validation. Recording a multiple-choice answer schedules an automatic
// advance after the configured delay.
func (s *Session) Record(questionID model.ID, input *Input) (*model.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result != nil {
		return nil, ErrSessionComplete
	}
	q := s.currentQuestionLocked()
	if q == nil || q.ID != questionID {
		return nil, ErrUnknownQuestion
	}

	resp := s.buildResponse(q, input)
	s.responses[q.ID] = resp
	delete(s.errors, string(q.ID))

	if q.Type == model.QuestionMultipleChoice {
		s.scheduleAutoAdvanceLocked()
	}
	return resp, nil
}

// buildResponse constructs the typed response for a question's variant.
// An unknown multiple-choice option id is carried through as a synthetic
// option so validation reports it rather than Record rejecting it.
func (s *Session) buildResponse(q *model.Question, input *Input) *model.Response {
	resp := &model.Response{
		Type:         q.Type,
		Timestamp:    s.now(),
		QuestionText: q.Text,
	}

	switch q.Type {
	case model.QuestionMultipleChoice:
		if input.OptionID == "" {
			break
		}
		opt := &model.Option{ID: input.OptionID}
		for i := range q.Options {
			if q.Options[i].ID == input.OptionID {
				opt = &q.Options[i]
				break
			}
		}
		resp.SelectedOption = opt
		resp.Tags = opt.Tags
		resp.Weight = opt.EffectiveWeight()
	case model.QuestionSlider:
		if input.SliderValue == nil {
			break
		}
		val := *input.SliderValue
		resp.SelectedValue = &val
		if sc := q.SliderConfig; sc != nil && val >= 0 && val < len(sc.Labels) {
			resp.SelectedLabel = sc.Labels[val]
			resp.Tags = sc.Tags[val]
			resp.Weight = 1.0
			if val < len(sc.Weights) {
				resp.Weight = sc.Weights[val]
			}
		}
	case model.QuestionCheckbox:
		resp.SelectedValues = input.SelectedValues
	default:
		resp.Value = strings.TrimSpace(input.Value)
	}
	return resp
}

// ValidateCurrent checks the current question's response, recording or
// clearing its error entry, and reports whether it passed.
func (s *Session) ValidateCurrent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateCurrentLocked()
}

func (s *Session) validateCurrentLocked() bool {
	q := s.currentQuestionLocked()
	if q == nil {
		return false
	}
	if msg := ValidateField(q, s.responses[q.ID]); msg != "" {
		s.errors[string(q.ID)] = msg
		s.listener.ValidationFailed(s.ID, q.ID, msg)
		return false
	}
	delete(s.errors, string(q.ID))
	return true
}

// Advance validates the current response and moves to the next
// question. On the last question it finalizes the session instead and
// returns the result bundle.
func (s *Session) Advance() (*model.FormResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked()
}

func (s *Session) advanceLocked() (*model.FormResult, error) {
	if s.result != nil {
		return nil, ErrSessionComplete
	}
	if !s.validateCurrentLocked() {
		return nil, ErrInvalidResponse
	}

	s.cancelTimerLocked()
	if s.step < len(s.cfg.Questions)-1 {
		s.step++
		s.listener.ProgressChanged(s.ID, s.step, len(s.cfg.Questions))
		return nil, nil
	}
	return s.finalizeLocked()
}

// finalizeLocked closes out the session: flattens the collected tags,
// derives completion time and runs the completion hook. A hook failure
// keeps the session at its last question with the error stored under
// SubmissionErrorKey so the visitor may retry.
func (s *Session) finalizeLocked() (*model.FormResult, error) {
	if s.finalizing {
		return nil, ErrFinalizeInProgress
	}
	s.finalizing = true
	defer func() { s.finalizing = false }()

	bundle := &model.FormResult{
		Responses:      s.responses,
		Tags:           s.flattenTagsLocked(),
		CompletedAt:    s.now(),
		FormVersion:    s.cfg.FormMetadata.Version,
		TotalQuestions: len(s.cfg.Questions),
		CompletionTime: s.completionTimeLocked(),
	}

	if s.onComplete != nil {
		if err := s.onComplete(bundle); err != nil {
			s.errors[SubmissionErrorKey] = "Submission failed. Please try again."
			return nil, fmt.Errorf("completion hook: %w", err)
		}
	}
	delete(s.errors, SubmissionErrorKey)

	s.result = bundle
	s.step = len(s.cfg.Questions)
	s.listener.ProgressChanged(s.ID, s.step, len(s.cfg.Questions))
	s.listener.SessionCompleted(s.ID, bundle)
	return bundle, nil
}

// flattenTagsLocked collects every response's tags in question order.
// Duplicates are retained: a tag contributed twice scores twice.
func (s *Session) flattenTagsLocked() []string {
	var tags []string
	for i := range s.cfg.Questions {
		if resp, ok := s.responses[s.cfg.Questions[i].ID]; ok {
			tags = append(tags, resp.Tags...)
		}
	}
	return tags
}

func (s *Session) completionTimeLocked() *model.CompletionTime {
	var first, last time.Time
	n := 0
	for _, resp := range s.responses {
		ts := resp.Timestamp
		if n == 0 || ts.Before(first) {
			first = ts
		}
		if n == 0 || ts.After(last) {
			last = ts
		}
		n++
	}
	if n < 2 {
		return nil
	}

	totalMs := last.Sub(first).Milliseconds()
	totalSec := int(last.Sub(first).Round(time.Second).Seconds())
	avg := 0
	if qs := len(s.cfg.Questions); qs > 0 {
		avg = totalSec / qs
	}
	return &model.CompletionTime{
		TotalMs:            totalMs,
		TotalSeconds:       totalSec,
		AveragePerQuestion: avg,
	}
}

// Restart discards all collected state and returns the session to the
// first question. Any pending auto-advance is invalidated.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.step = 0
	s.responses = make(map[model.ID]*model.Response)
	s.errors = make(map[string]string)
	s.result = nil
	s.listener.SessionRestarted(s.ID)
}

// Teardown invalidates pending timers. Call when the session is
// discarded.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

func (s *Session) teardownLocked() {
	s.epoch++
	s.cancelTimerLocked()
}

func (s *Session) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) scheduleAutoAdvanceLocked() {
	s.cancelTimerLocked()
	token := advanceToken{epoch: s.epoch, step: s.step}
	s.timer = time.AfterFunc(s.autoAdvanceDelay, func() {
		s.autoAdvance(token)
	})
}

// autoAdvance is the deferred continuation of a multiple-choice answer.
// The token is re-checked under the lock so a stale timer surviving a
// restart or manual advance has no effect.
func (s *Session) autoAdvance(token advanceToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.epoch != s.epoch || token.step != s.step || s.result != nil {
		return
	}
	s.advanceLocked()
}
