// Package bot implements the logical actions behind commands, callbacks and
// the admin template-edit conversation. Handlers are platform-agnostic and
// return Reply values; the telegram adapter turns them into sends.
package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"log/slog"

	"percentbot/core/logger"
	"percentbot/core/telegram/state"
	"percentbot/internal/domain"
	"percentbot/internal/metrics"
	"percentbot/internal/stats"
	"percentbot/internal/storage"
)

// Storage is the slice of the store the handlers consume.
type Storage interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	RecordTest(ctx context.Context, userID int64, displayName string, result int) error
	GetUserStats(ctx context.Context, userID int64) (storage.UserStats, error)
}

// Button is one labeled action offered with a reply.
// Action becomes the callback key, Data the optional payload.
type Button struct {
	Label  string
	Action string
	Data   string
}

// Reply is the outbound response of a logical action.
type Reply struct {
	Text    string
	Buttons [][]Button
}

// InlineCard is a single selectable inline-query result.
type InlineCard struct {
	Title       string
	Description string
	Text        string
}

// Service drives every logical action against the store, the stats engine
// and the per-user conversation state.
type Service struct {
	store    Storage
	stats    *stats.Engine
	sessions state.Manager
	adminID  int64

	// roll produces one result; replaced in tests.
	roll func() int
}

// NewService wires a Service. adminID is the single privileged identity.
func NewService(store Storage, engine *stats.Engine, sessions state.Manager, adminID int64) *Service {
	return &Service{
		store:    store,
		stats:    engine,
		sessions: sessions,
		adminID:  adminID,
		roll:     func() int { return rand.IntN(101) },
	}
}

// IsAdmin reports whether userID is the privileged identity.
func (s *Service) IsAdmin(userID int64) bool {
	return s.adminID != 0 && userID == s.adminID
}

// InConversation reports whether the user has a pending template-edit step.
func (s *Service) InConversation(ctx context.Context, userID int64) bool {
	return state.InProgress(ctx, s.sessions, userID)
}

// BeginTest generates a result, persists it and renders the template.
func (s *Service) BeginTest(ctx context.Context, userID int64, displayName string) (Reply, error) {
	result := s.roll()
	if err := s.store.RecordTest(ctx, userID, displayName, result); err != nil {
		return Reply{}, err
	}
	metrics.IncTest()

	return Reply{
		Text: RenderTemplate(s.template(ctx), result),
		Buttons: [][]Button{
			{{Label: btnRetry, Action: ActionRetry}},
			{{Label: btnMyStats, Action: ActionMyStats}},
			{{Label: btnGlobalStats, Action: ActionGlobalStats}},
		},
	}, nil
}

// InlineResult is the stateless variant of BeginTest: the result is
// persisted, session state is untouched.
func (s *Service) InlineResult(ctx context.Context, userID int64, displayName string) (InlineCard, error) {
	result := s.roll()
	if err := s.store.RecordTest(ctx, userID, displayName, result); err != nil {
		return InlineCard{}, err
	}
	metrics.IncTest()

	return InlineCard{
		Title:       inlineTitle,
		Description: fmt.Sprintf("Your result: %d%%", result),
		Text:        RenderTemplate(s.template(ctx), result),
	}, nil
}

// PersonalStats renders the user's cumulative counters.
// A user with no tests gets the informational message, not an error.
func (s *Service) PersonalStats(ctx context.Context, userID int64) (Reply, error) {
	us, err := s.store.GetUserStats(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return Reply{Text: msgNoTestsYet}, nil
	}
	if err != nil {
		return Reply{}, err
	}

	text := fmt.Sprintf("📈 You have taken the test %d times.", us.TestsCount)
	if us.LastTest.Valid {
		text += fmt.Sprintf("\nLast test: %s", us.LastTest.Time.Format("02.01.2006 15:04"))
	}
	return Reply{Text: text}, nil
}

// GlobalStatsMenu offers the fixed aggregation windows.
func (s *Service) GlobalStatsMenu() Reply {
	return Reply{
		Text: msgPickWindow,
		Buttons: [][]Button{
			{
				{Label: "Week", Action: StatsAction(stats.WindowWeek)},
				{Label: "Month", Action: StatsAction(stats.WindowMonth)},
			},
			{
				{Label: "Year", Action: StatsAction(stats.WindowYear)},
				{Label: "All time", Action: StatsAction(stats.WindowAllTime)},
			},
		},
	}
}

// WindowStats renders the aggregate for one trailing window.
func (s *Service) WindowStats(ctx context.Context, days int) (Reply, error) {
	sum, err := s.stats.Window(ctx, days)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: formatSummary(sum)}, nil
}

// FullStats renders every fixed window in one message.
func (s *Service) FullStats(ctx context.Context) (Reply, error) {
	sums, err := s.stats.Overview(ctx)
	if err != nil {
		return Reply{}, err
	}
	lines := make([]string, 0, len(sums)+1)
	lines = append(lines, "📊 Global statistics")
	for _, sum := range sums {
		lines = append(lines, formatSummary(sum))
	}
	return Reply{Text: strings.Join(lines, "\n")}, nil
}

// AdminMenu offers the privileged actions. Non-admin callers are denied.
func (s *Service) AdminMenu(ctx context.Context, userID int64) (Reply, error) {
	if !s.IsAdmin(userID) {
		return Reply{}, fmt.Errorf("admin menu for user %d: %w", userID, domain.ErrAccessDenied)
	}
	return Reply{
		Text: msgAdminMenu,
		Buttons: [][]Button{
			{{Label: btnEditText, Action: ActionEditText}},
			{{Label: btnFullStats, Action: ActionFullStats}},
		},
	}, nil
}

// EditTextBegin opens the template-edit conversation for the admin.
func (s *Service) EditTextBegin(ctx context.Context, userID int64) (Reply, error) {
	if !s.IsAdmin(userID) {
		return Reply{}, fmt.Errorf("edit text for user %d: %w", userID, domain.ErrAccessDenied)
	}
	if err := s.sessions.Set(ctx, userID, state.StateAwaitingTemplateText); err != nil {
		return Reply{}, domain.NewStorageFault("open edit session", err)
	}
	return Reply{
		Text: msgEditPrompt,
		Buttons: [][]Button{
			{{Label: btnCancel, Action: ActionCancelEdit}},
		},
	}, nil
}

// EditTextResolve consumes the pending template text. The conversation
// always returns to idle: valid input commits, anything else rejects.
func (s *Service) EditTextResolve(ctx context.Context, userID int64, text string) (Reply, error) {
	if err := s.sessions.Clear(ctx, userID); err != nil {
		logger.Warn(ctx, "tg", "session.clear_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}

	if !strings.Contains(text, Placeholder) {
		return Reply{}, domain.NewValidationError("template is missing " + Placeholder)
	}
	if err := s.store.SetConfig(ctx, storage.ConfigKeyMainText, text); err != nil {
		return Reply{}, err
	}
	return Reply{Text: msgTemplateUpdated}, nil
}

// EditTextCancel abandons the pending conversation without mutating config.
func (s *Service) EditTextCancel(ctx context.Context, userID int64) (Reply, error) {
	if !state.InProgress(ctx, s.sessions, userID) {
		return Reply{Text: msgNothingToCancel}, nil
	}
	if err := s.sessions.Clear(ctx, userID); err != nil {
		return Reply{}, domain.NewStorageFault("cancel edit session", err)
	}
	return Reply{Text: msgEditCancelled}, nil
}

// template loads the current response template, falling back to the default
// when the row is absent or the store is unavailable. The result is already
// persisted by then, so delivery beats strictness here.
func (s *Service) template(ctx context.Context) string {
	tpl, err := s.store.GetConfig(ctx, storage.ConfigKeyMainText)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn(ctx, "service.results", "template.load_failed",
				slog.String("err", err.Error()),
			)
		}
		return storage.DefaultMainText
	}
	return tpl
}

func formatSummary(sum stats.Summary) string {
	return fmt.Sprintf("%s: %.1f%% average over %d tests", sum.Label, sum.Average, sum.Count)
}
