package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"traderelay/internal/service"
	"traderelay/utils"
)

// Notifier pushes proposal prompts and confirmations into a telegram chat.
// It implements service.Notifier.
type Notifier struct {
	api    *tgbotapi.BotAPI
	logger *utils.Logger
}

func NewNotifier(api *tgbotapi.BotAPI, logger *utils.Logger) *Notifier {
	return &Notifier{api: api, logger: logger}
}

func (n *Notifier) Notify(chatID string, text string, actions []service.Action) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if len(actions) > 0 {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(actions))
		for _, action := range actions {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(action.Label, action.Token))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons)
	}

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to deliver message to chat %s: %w", chatID, err)
	}
	return nil
}
