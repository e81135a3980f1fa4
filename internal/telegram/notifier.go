package telegram

import (
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

// Notifier dispatches scan alerts to the operator chat. Delivery is best
// effort: an unconfigured or failing channel degrades to a log line and
// never interrupts the scan loop.
type Notifier struct {
	api    *tgbotapi.BotAPI // nil when the channel is unconfigured
	chatID int64
	logger *slog.Logger
}

func NewNotifier(api *tgbotapi.BotAPI, chatID int64, logger *slog.Logger) *Notifier {
	return &Notifier{api: api, chatID: chatID, logger: logger}
}

// NotifyPair sends the alert for a checked pair. Passing pairs carry the
// buy/re-check affordances; rejected pairs are informational only, so the
// operator is never one tap away from a rejected token.
func (n *Notifier) NotifyPair(pair models.CandidatePair, verdict *models.SafetyVerdict, passed bool, reason string) {
	text := formatPairAlert(pair, verdict, passed, reason)
	if passed {
		n.send(text, alertKeyboard(pair))
		return
	}
	n.send(text, nil)
}

// NotifyText sends a plain lifecycle or trade-result message.
func (n *Notifier) NotifyText(text string) {
	n.send(text, nil)
}

func (n *Notifier) send(text string, keyboard interface{}) {
	if n.api == nil || n.chatID == 0 {
		n.logger.Info("telegram disabled, alert logged only", "alert", firstLine(text))
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}

	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("failed to send telegram alert", "error", err)
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
