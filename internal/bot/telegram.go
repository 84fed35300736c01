package bot

import (
	"errors"

	coreconfig "percentbot/core/config"
	tg "percentbot/core/telegram"
	"percentbot/core/telegram/callbacks"
	"percentbot/core/telegram/commands"
	tghelpers "percentbot/core/telegram/helpers"
	"percentbot/core/telegram/keyboard"
	"percentbot/core/telegram/router"
	"percentbot/internal/domain"
	"percentbot/internal/metrics"

	tele "gopkg.in/telebot.v4"
)

// BuildRegistry maps commands and callback keys to service actions.
func BuildRegistry(svc *Service) *tg.Registry {
	reg := tg.NewRegistry()

	// Commands abandon a pending edit step too: the conversation never
	// survives any inbound event, only /cancel resolves it explicitly.
	reg.RegisterCommand("/start", commands.Command{
		Handler:     abandonPending(svc, onBeginTest(svc)),
		Description: "Take the test",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     abandonPending(svc, onPersonalStats(svc)),
		Description: "Your statistics",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     abandonPending(svc, onAdminMenu(svc)),
		Description: "Admin menu",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     onCancelEdit(svc),
		Description: "Cancel the current action",
		Hidden:      true,
	})

	// A pending edit step never survives a button press: the conversation
	// is abandoned first, then the pressed action runs.
	_ = reg.RegisterCallback(ActionRetry, abandonPending(svc, onBeginTest(svc)))
	_ = reg.RegisterCallback(ActionMyStats, abandonPending(svc, onPersonalStats(svc)))
	_ = reg.RegisterCallback(ActionGlobalStats, abandonPending(svc, func(c tele.Context) error {
		return deliver(c, svc.GlobalStatsMenu(), nil)
	}))
	_ = reg.RegisterCallback(ActionEditText, onEditTextBegin(svc))
	_ = reg.RegisterCallback(ActionFullStats, abandonPending(svc, onFullStats(svc)))
	_ = reg.RegisterCallback(ActionCancelEdit, onCancelEdit(svc))

	// stats_<days> is a key family, resolved here instead of one
	// registration per window.
	reg.SetCallbackNotFound(abandonPending(svc, onStatsWindow(svc)))
	reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownText)
	})

	return reg
}

// Routes binds the registry plus conversation and inline-query handling.
func Routes(svc *Service, reg *tg.Registry, cfg *coreconfig.Config) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, msgAccessDenied)
		},
	})
	routes = append(routes,
		router.CallbackRoute(reg, router.CallbackOptions{}),
		router.TextRoute(Conversation{svc: svc}, reg, router.TextOptions{}),
		tg.Route{Endpoint: tele.OnQuery, Handler: onInlineQuery(svc)},
	)
	return routes
}

// Conversation adapts the service's edit flow to the text router.
type Conversation struct{ svc *Service }

// InProgress reports whether the sender has a pending edit step.
func (cv Conversation) InProgress(c tele.Context) bool {
	user := c.Sender()
	if user == nil {
		return false
	}
	return cv.svc.InConversation(tghelpers.BuildContext(c), user.ID)
}

// Resolve feeds the received text into the pending edit step.
func (cv Conversation) Resolve(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	reply, err := cv.svc.EditTextResolve(ctx, user.ID, c.Text())
	return deliver(c, reply, err)
}

func abandonPending(svc *Service, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if user := c.Sender(); user != nil {
			ctx := tghelpers.BuildContext(c)
			if svc.InConversation(ctx, user.ID) {
				_, _ = svc.EditTextCancel(ctx, user.ID)
			}
		}
		return h(c)
	}
}

func onBeginTest(svc *Service) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return nil
		}
		reply, err := svc.BeginTest(tghelpers.BuildContext(c), user.ID, displayName(user))
		return deliver(c, reply, err)
	}
}

func onPersonalStats(svc *Service) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return nil
		}
		reply, err := svc.PersonalStats(tghelpers.BuildContext(c), user.ID)
		return deliver(c, reply, err)
	}
}

func onAdminMenu(svc *Service) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return nil
		}
		reply, err := svc.AdminMenu(tghelpers.BuildContext(c), user.ID)
		return deliver(c, reply, err)
	}
}

func onEditTextBegin(svc *Service) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return nil
		}
		reply, err := svc.EditTextBegin(tghelpers.BuildContext(c), user.ID)
		return deliver(c, reply, err)
	}
}

func onCancelEdit(svc *Service) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return nil
		}
		reply, err := svc.EditTextCancel(tghelpers.BuildContext(c), user.ID)
		return deliver(c, reply, err)
	}
}

func onFullStats(svc *Service) tele.HandlerFunc {
	return func(c tele.Context) error {
		reply, err := svc.FullStats(tghelpers.BuildContext(c))
		return deliver(c, reply, err)
	}
}

func onStatsWindow(svc *Service) tele.HandlerFunc {
	return func(c tele.Context) error {
		days, ok := ParseStatsAction(callbacks.Key(c))
		if !ok {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		}
		reply, err := svc.WindowStats(tghelpers.BuildContext(c), days)
		return deliver(c, reply, err)
	}
}

func onInlineQuery(svc *Service) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return nil
		}
		ctx := tghelpers.WithHandler(c, "inline_query")
		card, err := svc.InlineResult(ctx, user.ID, displayName(user))
		if err != nil {
			metrics.IncHandlerFailure(errCode(err))
			return err
		}

		result := &tele.ArticleResult{
			Title:       card.Title,
			Description: card.Description,
			Text:        card.Text,
		}
		result.SetResultID("1")
		return c.Answer(&tele.QueryResponse{
			Results:   tele.Results{result},
			CacheTime: 1,
		})
	}
}

// deliver turns a service result into an outbound message. Errors are both
// answered with a user-visible message and propagated for summary logging.
func deliver(c tele.Context, reply Reply, err error) error {
	if err != nil {
		metrics.IncHandlerFailure(errCode(err))
		_ = tghelpers.SendText(c, errorMessage(err))
		return err
	}
	if len(reply.Buttons) > 0 {
		return tghelpers.SendWithKeyboard(c, reply.Text, markup(reply.Buttons))
	}
	return tghelpers.SendText(c, reply.Text)
}

func markup(rows [][]Button) *tele.ReplyMarkup {
	kbRows := make([][]keyboard.InlineBtn, len(rows))
	for i, row := range rows {
		btns := make([]keyboard.InlineBtn, len(row))
		for j, b := range row {
			btns[j] = keyboard.InlineBtn{Text: b.Label, Unique: b.Action, Data: b.Data}
		}
		kbRows[i] = btns
	}
	return keyboard.InlineButtonsRows(kbRows...)
}

func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

func errCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return "ACCESS_DENIED"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case domain.IsValidation(err):
		return "VALIDATION"
	case domain.IsStorageFault(err):
		return "STORAGE_FAULT"
	default:
		return "UNKNOWN_ERROR"
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return msgAccessDenied
	case domain.IsValidation(err):
		return msgTemplateRejected
	case errors.Is(err, domain.ErrNotFound):
		return msgNoTestsYet
	default:
		return msgFailure
	}
}
