package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"percentbot/core/telegram/state"
	"percentbot/internal/domain"
	"percentbot/internal/stats"
	"percentbot/internal/storage"
)

const adminID int64 = 1000

// fakeStore is an in-memory Storage + stats.Aggregator.
type fakeStore struct {
	config  map[string]string
	users   map[int64]*storage.UserStats
	results []int

	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		config: map[string]string{},
		users:  map[int64]*storage.UserStats{},
	}
}

func (f *fakeStore) GetConfig(_ context.Context, key string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	v, ok := f.config[key]
	if !ok {
		return "", fmt.Errorf("config %q: %w", key, domain.ErrNotFound)
	}
	return v, nil
}

func (f *fakeStore) SetConfig(_ context.Context, key, value string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.config[key] = value
	return nil
}

func (f *fakeStore) RecordTest(_ context.Context, userID int64, _ string, result int) error {
	if f.failWith != nil {
		return f.failWith
	}
	if result < 0 || result > 100 {
		return domain.NewValidationError("out of range")
	}
	us, ok := f.users[userID]
	if !ok {
		us = &storage.UserStats{}
		f.users[userID] = us
	}
	us.TestsCount++
	us.LastTest.Valid = true
	us.LastTest.Time = time.Now()
	f.results = append(f.results, result)
	return nil
}

func (f *fakeStore) GetUserStats(_ context.Context, userID int64) (storage.UserStats, error) {
	us, ok := f.users[userID]
	if !ok {
		return storage.UserStats{}, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return *us, nil
}

func (f *fakeStore) Aggregate(_ context.Context, _ int) (storage.Aggregate, error) {
	if len(f.results) == 0 {
		return storage.Aggregate{}, nil
	}
	sum := 0
	for _, r := range f.results {
		sum += r
	}
	return storage.Aggregate{
		Average: float64(sum) / float64(len(f.results)),
		Count:   len(f.results),
	}, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, state.Manager) {
	t.Helper()
	store := newFakeStore()
	sessions := state.NewMemoryManager()
	svc := NewService(store, stats.NewEngine(store), sessions, adminID)
	return svc, store, sessions
}

func TestResultRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	for i := 0; i < 1000; i++ {
		r := svc.roll()
		require.GreaterOrEqual(t, r, 0)
		require.LessOrEqual(t, r, 100)
	}
}

func TestBeginTestRendersTemplate(t *testing.T) {
	// Scenario: fresh store, custom default template, exact substitution.
	svc, store, _ := newTestService(t)
	store.config[storage.ConfigKeyMainText] = "Result: {percentage}%"
	svc.roll = func() int { return 57 }

	reply, err := svc.BeginTest(context.Background(), 42, "tester")
	require.NoError(t, err)
	assert.Equal(t, "Result: 57%", reply.Text)

	us, err := store.GetUserStats(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 1, us.TestsCount)
	assert.True(t, us.LastTest.Valid)
	assert.WithinDuration(t, time.Now(), us.LastTest.Time, time.Minute)
}

func TestBeginTestOffersFollowUps(t *testing.T) {
	svc, _, _ := newTestService(t)

	reply, err := svc.BeginTest(context.Background(), 42, "tester")
	require.NoError(t, err)

	var actions []string
	for _, row := range reply.Buttons {
		for _, b := range row {
			actions = append(actions, b.Action)
		}
	}
	assert.Equal(t, []string{ActionRetry, ActionMyStats, ActionGlobalStats}, actions)
}

func TestBeginTestFallsBackToDefaultTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.roll = func() int { return 3 }

	reply, err := svc.BeginTest(context.Background(), 42, "tester")
	require.NoError(t, err)
	assert.Equal(t, RenderTemplate(storage.DefaultMainText, 3), reply.Text)
}

func TestBeginTestPropagatesStorageFault(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.failWith = domain.NewStorageFault("insert", fmt.Errorf("connection refused"))

	_, err := svc.BeginTest(context.Background(), 42, "tester")
	require.Error(t, err)
	assert.True(t, domain.IsStorageFault(err))
}

func TestEditFlowCommit(t *testing.T) {
	// Scenario: admin opens the edit flow, submits a valid template.
	svc, store, sessions := newTestService(t)
	ctx := context.Background()

	reply, err := svc.EditTextBegin(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, msgEditPrompt, reply.Text)
	assert.True(t, svc.InConversation(ctx, adminID))

	reply, err = svc.EditTextResolve(ctx, adminID, "New {percentage} value")
	require.NoError(t, err)
	assert.Equal(t, msgTemplateUpdated, reply.Text)
	assert.Equal(t, "New {percentage} value", store.config[storage.ConfigKeyMainText])

	st, err := sessions.State(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, state.StateIdle, st)
}

func TestEditFlowRejectsMissingPlaceholder(t *testing.T) {
	// Scenario: rejection leaves config untouched and the conversation idle.
	svc, store, sessions := newTestService(t)
	ctx := context.Background()
	store.config[storage.ConfigKeyMainText] = "keep me {percentage}"

	_, err := svc.EditTextBegin(ctx, adminID)
	require.NoError(t, err)

	_, err = svc.EditTextResolve(ctx, adminID, "no placeholder here")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "keep me {percentage}", store.config[storage.ConfigKeyMainText])

	st, err := sessions.State(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, state.StateIdle, st)
}

func TestEditFlowCancel(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.EditTextBegin(ctx, adminID)
	require.NoError(t, err)

	reply, err := svc.EditTextCancel(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, msgEditCancelled, reply.Text)
	assert.False(t, svc.InConversation(ctx, adminID))
	assert.Empty(t, store.config)
}

func TestEditFlowCancelWithoutConversation(t *testing.T) {
	svc, _, _ := newTestService(t)

	reply, err := svc.EditTextCancel(context.Background(), adminID)
	require.NoError(t, err)
	assert.Equal(t, msgNothingToCancel, reply.Text)
}

func TestEditFlowDeniedForNonAdmin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.EditTextBegin(ctx, 42)
	require.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.False(t, svc.InConversation(ctx, 42))

	_, err = svc.AdminMenu(ctx, 42)
	require.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestEditFlowStorageFaultResetsSession(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.EditTextBegin(ctx, adminID)
	require.NoError(t, err)

	store.failWith = domain.NewStorageFault("set config", fmt.Errorf("down"))
	_, err = svc.EditTextResolve(ctx, adminID, "still {percentage}")
	require.Error(t, err)
	assert.True(t, domain.IsStorageFault(err))
	assert.False(t, svc.InConversation(ctx, adminID))
}

func TestPersonalStatsNoTestsYet(t *testing.T) {
	// Scenario: stats for a user that never tested is informational.
	svc, _, _ := newTestService(t)

	reply, err := svc.PersonalStats(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, msgNoTestsYet, reply.Text)
}

func TestWindowStatsEmptyWindow(t *testing.T) {
	svc, _, _ := newTestService(t)

	reply, err := svc.WindowStats(context.Background(), stats.WindowWeek)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "0.0%")
	assert.Contains(t, reply.Text, "0 tests")
}

func TestFullStatsListsAllWindows(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.BeginTest(context.Background(), 42, "tester")
	require.NoError(t, err)

	reply, err := svc.FullStats(context.Background())
	require.NoError(t, err)
	for _, label := range []string{"Week", "Month", "Year", "All time"} {
		assert.Contains(t, reply.Text, label)
	}
}

func TestInlineResultPersistsWithoutSession(t *testing.T) {
	svc, store, _ := newTestService(t)
	svc.roll = func() int { return 88 }
	ctx := context.Background()

	card, err := svc.InlineResult(ctx, 42, "tester")
	require.NoError(t, err)
	assert.Contains(t, card.Text, "88")
	assert.Contains(t, card.Description, "88%")

	us, err := store.GetUserStats(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, us.TestsCount)
	assert.False(t, svc.InConversation(ctx, 42))
}
