package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"plantmatch/internal/cache"
	"plantmatch/internal/form"
	"plantmatch/internal/model"
	"plantmatch/internal/repository"
)

var ErrSessionNotFound = errors.New("session not found")

// completionHookTimeout bounds the persistence work done when a
// session finishes.
const completionHookTimeout = 5 * time.Second

// SessionState is the session snapshot returned to the widget after
// every operation.
type SessionState struct {
	SessionID   string            `json:"sessionId"`
	VisitorID   string            `json:"visitorId"`
	StepIndex   int               `json:"stepIndex"`
	TotalSteps  int               `json:"totalSteps"`
	Progress    float64           `json:"progress"`
	Complete    bool              `json:"complete"`
	Restored    bool              `json:"restored,omitempty"`
	Question    *model.Question   `json:"question,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
	Result      *model.Result     `json:"result,omitempty"`
	CTAText     string            `json:"ctaText,omitempty"`
	RestartText string            `json:"restartText,omitempty"`
}

// QuizService owns the in-memory sessions and drives the quiz flow:
// recording answers, advancing, scoring on completion and persisting
// the outcome for returning visitors.
type QuizService struct {
	cfg          *model.QuizConfig
	catalogRepo  repository.CatalogRepo
	resultCache  cache.ResultCache
	analyticsSvc *AnalyticsService
	scorer       *form.Scorer
	broadcaster  Broadcaster

	mu       sync.RWMutex
	sessions map[string]*form.Session
	results  map[string]*model.Result
	restored map[string]bool
	catalog  []model.Plant
}

// NewQuizService creates a new quiz service
func NewQuizService(
	cfg *model.QuizConfig,
	catalogRepo repository.CatalogRepo,
	resultCache cache.ResultCache,
	scorer *form.Scorer,
) *QuizService {
	return &QuizService{
		cfg:         cfg,
		catalogRepo: catalogRepo,
		resultCache: resultCache,
		scorer:      scorer,
		sessions:    make(map[string]*form.Session),
		results:     make(map[string]*model.Result),
		restored:    make(map[string]bool),
	}
}

// Config returns the validated quiz configuration
func (s *QuizService) Config() *model.QuizConfig {
	return s.cfg
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *QuizService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetAnalyticsService sets the analytics sink for completion records
func (s *QuizService) SetAnalyticsService(svc *AnalyticsService) {
	s.analyticsSvc = svc
}

// LoadCatalog fetches the plant catalog once at startup
func (s *QuizService) LoadCatalog(ctx context.Context) error {
	plants, err := s.catalogRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(plants) == 0 {
		return fmt.Errorf("plant catalog is empty; run the seeder")
	}

	s.mu.Lock()
	s.catalog = plants
	s.mu.Unlock()
	log.Printf("Catalog loaded: %d plants", len(plants))
	return nil
}

// StartSession creates a session for a visitor. A returning visitor
// with a saved result gets it back immediately, bypassing scoring.
func (s *QuizService) StartSession(ctx context.Context, visitorID string) (*SessionState, error) {
	if visitorID == "" {
		visitorID = uuid.New().String()
	}
	sessionID := uuid.New().String()

	session := form.NewSession(sessionID, visitorID, s.cfg)
	session.SetListener(s)
	session.SetCompletionHook(s.completionHook(session))

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()

	saved, err := s.resultCache.Load(ctx, visitorID)
	if err != nil {
		log.Printf("failed to load saved result for visitor %s: %v", visitorID, err)
	}
	if saved != nil {
		s.mu.Lock()
		s.results[sessionID] = &model.Result{Plant: saved.Plant, RawScore: saved.RawScore}
		s.restored[sessionID] = true
		s.mu.Unlock()
	}

	return s.state(session), nil
}

// GetState returns the current snapshot of a session
func (s *QuizService) GetState(sessionID string) (*SessionState, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.state(session), nil
}

// Record stores an answer for the session's current question
func (s *QuizService) Record(sessionID string, questionID model.ID, input *form.Input) (*SessionState, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := session.Record(questionID, input); err != nil {
		return nil, err
	}
	return s.state(session), nil
}

// Advance validates the current answer and moves the session forward,
// finalizing it on the last question.
func (s *QuizService) Advance(sessionID string) (*SessionState, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := session.Advance(); err != nil {
		if errors.Is(err, form.ErrInvalidResponse) {
			return s.state(session), nil
		}
		return nil, err
	}
	return s.state(session), nil
}

// Restart discards a session's answers and any saved result so the
// visitor can take the quiz again.
func (s *QuizService) Restart(ctx context.Context, sessionID string) (*SessionState, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.resultCache.Clear(ctx, session.VisitorID); err != nil {
		log.Printf("failed to clear saved result for visitor %s: %v", session.VisitorID, err)
	}

	s.mu.Lock()
	delete(s.results, sessionID)
	delete(s.restored, sessionID)
	s.mu.Unlock()

	session.Restart()
	return s.state(session), nil
}

// ClickCTA marks the visitor's saved result as acted on, retiring it
func (s *QuizService) ClickCTA(ctx context.Context, sessionID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	s.mu.RLock()
	restored := s.restored[sessionID]
	s.mu.RUnlock()
	if !session.Complete() && !restored {
		return form.ErrSessionNotComplete
	}
	return s.resultCache.MarkCTAClicked(ctx, session.VisitorID)
}

// EndSession removes a session and invalidates its pending timers
func (s *QuizService) EndSession(sessionID string) {
	s.mu.Lock()
	session := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	delete(s.results, sessionID)
	delete(s.restored, sessionID)
	s.mu.Unlock()

	if session != nil {
		session.Teardown()
	}
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSession(sessionID)
	}
}

func (s *QuizService) session(sessionID string) (*form.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *QuizService) state(session *form.Session) *SessionState {
	s.mu.RLock()
	result := s.results[session.ID]
	restored := s.restored[session.ID]
	s.mu.RUnlock()

	state := &SessionState{
		SessionID:  session.ID,
		VisitorID:  session.VisitorID,
		StepIndex:  session.StepIndex(),
		TotalSteps: session.TotalSteps(),
		Progress:   session.Progress(),
		Complete:   session.Complete() || restored,
		Restored:   restored,
		Errors:     session.Errors(),
	}
	if restored {
		state.StepIndex = state.TotalSteps
		state.Progress = 100
	}
	if state.Complete {
		state.Result = result
		state.CTAText = s.cfg.ResultConfig.CTAText
		state.RestartText = s.cfg.ResultConfig.RestartText
	} else {
		state.Question = session.CurrentQuestion()
	}
	return state
}

// completionHook scores the finished session and persists the outcome.
// An error here keeps the session alive for retry.
func (s *QuizService) completionHook(session *form.Session) func(*model.FormResult) error {
	return func(bundle *model.FormResult) error {
		ctx, cancel := context.WithTimeout(context.Background(), completionHookTimeout)
		defer cancel()

		s.mu.RLock()
		catalog := s.catalog
		s.mu.RUnlock()

		selected, _ := s.scorer.Score(bundle.Tags, catalog)

		saved := &model.SavedResult{
			Plant:     selected.Plant,
			Tags:      bundle.Tags,
			RawScore:  selected.RawScore,
			Timestamp: bundle.CompletedAt,
		}
		if err := s.resultCache.Save(ctx, session.VisitorID, saved); err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}

		s.mu.Lock()
		s.results[session.ID] = &selected
		s.mu.Unlock()

		if s.analyticsSvc != nil {
			s.analyticsSvc.RecordCompletion(ctx, bundle.AnalyticsRecord())
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToHosts(EventAnalyticsUpdate, map[string]interface{}{
				"plant":          selected.Plant.Name,
				"totalQuestions": bundle.TotalQuestions,
				"completedAt":    bundle.CompletedAt,
			})
		}
		return nil
	}
}

// form.Listener implementation: session lifecycle events go out over
// the WebSocket hub.

func (s *QuizService) ProgressChanged(sessionID string, stepIndex, totalSteps int) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToSession(sessionID, EventProgressUpdate, map[string]interface{}{
		"stepIndex":  stepIndex,
		"totalSteps": totalSteps,
		"progress":   float64(stepIndex) / float64(totalSteps) * 100,
	})
}

func (s *QuizService) ValidationFailed(sessionID string, questionID model.ID, message string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToSession(sessionID, EventValidationError, map[string]interface{}{
		"questionId": questionID,
		"message":    message,
	})
}

func (s *QuizService) SessionCompleted(sessionID string, bundle *model.FormResult) {
	if s.broadcaster == nil {
		return
	}
	s.mu.RLock()
	result := s.results[sessionID]
	s.mu.RUnlock()

	payload := map[string]interface{}{
		"completedAt":    bundle.CompletedAt,
		"totalQuestions": bundle.TotalQuestions,
	}
	if result != nil {
		payload["plant"] = result.Plant
		payload["rawScore"] = result.RawScore
	}
	s.broadcaster.BroadcastToSession(sessionID, EventSessionComplete, payload)
}

func (s *QuizService) SessionRestarted(sessionID string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToSession(sessionID, EventSessionRestarted, nil)
}
