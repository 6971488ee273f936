package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantmatch/internal/form"
	"plantmatch/internal/model"
)

type fakeCatalogRepo struct {
	plants []model.Plant
}

func (f *fakeCatalogRepo) GetAll(context.Context) ([]model.Plant, error) {
	return f.plants, nil
}

func (f *fakeCatalogRepo) GetByName(_ context.Context, name string) (*model.Plant, error) {
	for i := range f.plants {
		if f.plants[i].Name == name {
			return &f.plants[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogRepo) ReplaceAll(_ context.Context, plants []model.Plant) error {
	f.plants = plants
	return nil
}

type fakeResultCache struct {
	mu    sync.Mutex
	saved map[string]*model.SavedResult
}

func newFakeResultCache() *fakeResultCache {
	return &fakeResultCache{saved: make(map[string]*model.SavedResult)}
}

func (f *fakeResultCache) Load(_ context.Context, visitorID string) (*model.SavedResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[visitorID], nil
}

func (f *fakeResultCache) Save(_ context.Context, visitorID string, result *model.SavedResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[visitorID] = result
	return nil
}

func (f *fakeResultCache) Clear(_ context.Context, visitorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, visitorID)
	return nil
}

func (f *fakeResultCache) MarkCTAClicked(_ context.Context, visitorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, visitorID)
	return nil
}

type broadcastEvent struct {
	sessionID string
	msgType   string
	payload   interface{}
}

type fakeBroadcaster struct {
	mu            sync.Mutex
	sessionEvents []broadcastEvent
	hostEvents    []broadcastEvent
	disconnected  []string
}

func (f *fakeBroadcaster) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionEvents = append(f.sessionEvents, broadcastEvent{sessionID, msgType, payload})
}

func (f *fakeBroadcaster) BroadcastToHosts(msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hostEvents = append(f.hostEvents, broadcastEvent{"", msgType, payload})
}

func (f *fakeBroadcaster) DisconnectSession(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = append(f.disconnected, sessionID)
}

func (f *fakeBroadcaster) sessionTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, len(f.sessionEvents))
	for i, ev := range f.sessionEvents {
		types[i] = ev.msgType
	}
	return types
}

func (f *fakeBroadcaster) hostTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, len(f.hostEvents))
	for i, ev := range f.hostEvents {
		types[i] = ev.msgType
	}
	return types
}

func quizConfig() *model.QuizConfig {
	return &model.QuizConfig{
		FormMetadata: model.FormMetadata{
			Title:       "Plant Match",
			Description: "Find your plant",
			Version:     "1.0",
		},
		Questions: []model.Question{
			{
				ID:       "q1",
				Text:     "How committed are you?",
				Type:     model.QuestionMultipleChoice,
				Required: true,
				Options: []model.Option{
					{ID: "low", Text: "Barely", Tags: []string{"low_maintenance"}},
					{ID: "high", Text: "Fully", Tags: []string{"high_maintenance"}},
				},
			},
			{
				ID:   "q2",
				Text: "Do you even like plants?",
				Type: model.QuestionSlider,
				SliderConfig: &model.SliderConfig{
					Labels: []string{"No", "Maybe", "Yes"},
					Tags:   [][]string{{}, {"passive"}, {"confident"}},
				},
			},
		},
		ResultConfig: model.ResultConfig{
			CalculationMethod: model.CalcWeightedTags,
			DisplayType:       model.DisplayPolaroid,
			CTAText:           "Meet your match",
			RestartText:       "Take the quiz again",
		},
	}
}

func newTestQuizService(resultCache *fakeResultCache) *QuizService {
	catalog := &fakeCatalogRepo{plants: []model.Plant{
		{Name: "Bo", Tags: []string{"low_maintenance"}},
		{Name: "Gertrude", Tags: []string{"high_maintenance"}},
	}}
	svc := NewQuizService(quizConfig(), catalog, resultCache, form.NewScorer(rand.NewSource(1)))
	if err := svc.LoadCatalog(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func completeQuiz(t *testing.T, svc *QuizService, sessionID string) *SessionState {
	t.Helper()

	state, err := svc.Record(sessionID, "q1", &form.Input{OptionID: "low"})
	require.NoError(t, err)
	require.Empty(t, state.Errors)

	state, err = svc.Advance(sessionID)
	require.NoError(t, err)
	require.False(t, state.Complete)

	v := 2
	_, err = svc.Record(sessionID, "q2", &form.Input{SliderValue: &v})
	require.NoError(t, err)

	state, err = svc.Advance(sessionID)
	require.NoError(t, err)
	return state
}

func TestQuizServiceFullFlow(t *testing.T) {
	resultCache := newFakeResultCache()
	svc := newTestQuizService(resultCache)

	state, err := svc.StartSession(context.Background(), "visitor-1")
	require.NoError(t, err)
	require.NotNil(t, state.Question)
	assert.Equal(t, model.ID("q1"), state.Question.ID)
	assert.Equal(t, 0.0, state.Progress)
	assert.False(t, state.Complete)

	final := completeQuiz(t, svc, state.SessionID)
	assert.True(t, final.Complete)
	assert.Equal(t, 100.0, final.Progress)
	require.NotNil(t, final.Result)
	assert.Equal(t, "Bo", final.Result.Plant.Name)
	assert.Equal(t, 1, final.Result.RawScore)
	assert.Equal(t, "Meet your match", final.CTAText)

	saved, _ := resultCache.Load(context.Background(), "visitor-1")
	require.NotNil(t, saved)
	assert.Equal(t, "Bo", saved.Plant.Name)
	assert.Equal(t, []string{"low_maintenance", "confident"}, saved.Tags)
	assert.False(t, saved.CTAClicked)
}

func TestQuizServiceRestoresSavedResult(t *testing.T) {
	resultCache := newFakeResultCache()
	resultCache.saved["visitor-2"] = &model.SavedResult{
		Plant:    model.Plant{Name: "Gertrude"},
		RawScore: 3,
	}
	svc := newTestQuizService(resultCache)

	state, err := svc.StartSession(context.Background(), "visitor-2")
	require.NoError(t, err)
	assert.True(t, state.Complete)
	assert.True(t, state.Restored)
	require.NotNil(t, state.Result)
	assert.Equal(t, "Gertrude", state.Result.Plant.Name)
	assert.Equal(t, 3, state.Result.RawScore)
	assert.Nil(t, state.Question)
}

func TestQuizServiceRestart(t *testing.T) {
	resultCache := newFakeResultCache()
	svc := newTestQuizService(resultCache)

	state, err := svc.StartSession(context.Background(), "visitor-3")
	require.NoError(t, err)
	completeQuiz(t, svc, state.SessionID)

	state, err = svc.Restart(context.Background(), state.SessionID)
	require.NoError(t, err)
	assert.False(t, state.Complete)
	assert.False(t, state.Restored)
	assert.Equal(t, 0, state.StepIndex)
	require.NotNil(t, state.Question)

	saved, _ := resultCache.Load(context.Background(), "visitor-3")
	assert.Nil(t, saved)
}

func TestQuizServiceClickCTA(t *testing.T) {
	resultCache := newFakeResultCache()
	svc := newTestQuizService(resultCache)

	state, err := svc.StartSession(context.Background(), "visitor-4")
	require.NoError(t, err)
	completeQuiz(t, svc, state.SessionID)

	require.NoError(t, svc.ClickCTA(context.Background(), state.SessionID))
	saved, _ := resultCache.Load(context.Background(), "visitor-4")
	assert.Nil(t, saved)
}

func TestQuizServiceBroadcastsLifecycleEvents(t *testing.T) {
	svc := newTestQuizService(newFakeResultCache())
	bc := &fakeBroadcaster{}
	svc.SetBroadcaster(bc)

	state, err := svc.StartSession(context.Background(), "visitor-10")
	require.NoError(t, err)
	completeQuiz(t, svc, state.SessionID)

	sessionTypes := bc.sessionTypes()
	assert.Contains(t, sessionTypes, EventProgressUpdate)
	assert.Contains(t, sessionTypes, EventSessionComplete)

	// completion fans an analytics update out to hosts
	assert.Equal(t, []string{EventAnalyticsUpdate}, bc.hostTypes())

	svc.EndSession(state.SessionID)
	assert.Equal(t, []string{state.SessionID}, bc.disconnected)
}

func TestQuizServiceClickCTABeforeComplete(t *testing.T) {
	svc := newTestQuizService(newFakeResultCache())

	state, err := svc.StartSession(context.Background(), "visitor-9")
	require.NoError(t, err)

	err = svc.ClickCTA(context.Background(), state.SessionID)
	assert.ErrorIs(t, err, form.ErrSessionNotComplete)
}

func TestQuizServiceValidationSurfacesInState(t *testing.T) {
	svc := newTestQuizService(newFakeResultCache())

	state, err := svc.StartSession(context.Background(), "visitor-5")
	require.NoError(t, err)

	// advancing without an answer keeps the session at q1 with an error
	state, err = svc.Advance(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.StepIndex)
	assert.Contains(t, state.Errors["q1"], "required")
}

func TestQuizServiceUnknownSession(t *testing.T) {
	svc := newTestQuizService(newFakeResultCache())

	_, err := svc.GetState("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Advance("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuizServiceEndSessionStopsAutoAdvance(t *testing.T) {
	svc := newTestQuizService(newFakeResultCache())

	state, err := svc.StartSession(context.Background(), "visitor-6")
	require.NoError(t, err)

	_, err = svc.Record(state.SessionID, "q1", &form.Input{OptionID: "low"})
	require.NoError(t, err)

	svc.EndSession(state.SessionID)
	_, err = svc.GetState(state.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// the pending auto-advance fires into a torn-down session and is a no-op
	time.Sleep(form.DefaultAutoAdvanceDelay + 50*time.Millisecond)
}
