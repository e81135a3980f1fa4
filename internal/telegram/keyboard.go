package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

// Callback data formats:
//
//	buy:<token>:<native amount>
//	sell:<token>:<percent>
//	check:<token>:<chain id>
type callbackAction struct {
	Action  string
	Token   string
	Arg     string
	ChainID int64
}

func parseCallback(data string) (callbackAction, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return callbackAction{}, fmt.Errorf("malformed callback data %q", data)
	}

	cb := callbackAction{Action: parts[0], Token: parts[1], Arg: parts[2]}
	switch cb.Action {
	case "buy", "sell":
	case "check":
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return callbackAction{}, fmt.Errorf("bad chain id in callback %q", data)
		}
		cb.ChainID = id
	default:
		return callbackAction{}, fmt.Errorf("unknown callback action %q", cb.Action)
	}
	return cb, nil
}

// alertKeyboard builds the action affordances attached to a passing scan
// alert. Rejected pairs never get one of these.
func alertKeyboard(pair models.CandidatePair) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟢 Buy 0.01", fmt.Sprintf("buy:%s:0.01", pair.TokenAddress)),
			tgbotapi.NewInlineKeyboardButtonData("🟢 Buy 0.05", fmt.Sprintf("buy:%s:0.05", pair.TokenAddress)),
			tgbotapi.NewInlineKeyboardButtonData("🟢 Buy 0.1", fmt.Sprintf("buy:%s:0.1", pair.TokenAddress)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Re-check", fmt.Sprintf("check:%s:%d", pair.TokenAddress, pair.ChainID)),
			tgbotapi.NewInlineKeyboardButtonURL("🔗 DexScreener",
				fmt.Sprintf("https://dexscreener.com/%s/%s", pair.Chain, pair.PairAddress)),
		),
	)
}

// checkKeyboard builds the buy/sell affordances for a manual /check that
// came back safe.
func checkKeyboard(token string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟢 Buy 0.01", fmt.Sprintf("buy:%s:0.01", token)),
			tgbotapi.NewInlineKeyboardButtonData("🟢 Buy 0.05", fmt.Sprintf("buy:%s:0.05", token)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔴 Sell 50%", fmt.Sprintf("sell:%s:50", token)),
			tgbotapi.NewInlineKeyboardButtonData("🔴 Sell 100%", fmt.Sprintf("sell:%s:100", token)),
		),
	)
}
