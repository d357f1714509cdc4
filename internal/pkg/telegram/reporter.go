package telegram

import (
	"context"
	"fmt"
	"html"
	"time"

	tele "gopkg.in/telebot.v3"

	"paycallback/internal/payment"
	"paycallback/internal/settlement"
)

// Reporter posts settlement reports to an operator chat through the Bot API.
// It never polls for updates.
type Reporter struct {
	bot  *tele.Bot
	chat tele.ChatID
}

// NewReporter returns nil when no token or chat is configured; a nil
// *Reporter drops every report.
func NewReporter(token string, chatID int64) (*Reporter, error) {
	return newReporter(tele.Settings{Token: token, Offline: true}, chatID)
}

func newReporter(settings tele.Settings, chatID int64) (*Reporter, error) {
	if settings.Token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("create report bot: %w", err)
	}
	return &Reporter{bot: bot, chat: tele.ChatID(chatID)}, nil
}

func (r *Reporter) ReportSettlement(ctx context.Context, e settlement.SettlementEvent) error {
	icon := "✅"
	if e.Outcome != payment.OutcomePaid {
		icon = "❌"
	}
	text := fmt.Sprintf("%s <b>Order %s</b>\n\nOrder: <code>%s</code>\nGateway: %s\nAmount: %s\nRequest: <code>%s</code>\nTime: %s",
		icon,
		html.EscapeString(string(e.Outcome)),
		html.EscapeString(e.OrderID),
		html.EscapeString(e.Provider),
		html.EscapeString(e.Amount),
		html.EscapeString(e.RequestID),
		e.At.Format(time.RFC3339))
	return r.ReportText(ctx, text)
}

func (r *Reporter) ReportText(_ context.Context, text string) error {
	if r == nil {
		return nil
	}
	if _, err := r.bot.Send(r.chat, text, tele.ModeHTML); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
