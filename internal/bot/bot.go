package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"traderelay/internal/service"
	"traderelay/utils"
)

type Bot struct {
	API     *tgbotapi.BotAPI
	service *service.Service
	logger  *utils.Logger
}

func NewBot(api *tgbotapi.BotAPI, svc *service.Service, logger *utils.Logger) *Bot {
	return &Bot{
		API:     api,
		service: svc,
		logger:  logger,
	}
}

func (b *Bot) Start() {
	b.logger.Info("Starting bot...")
	updates := b.API.GetUpdatesChan(tgbotapi.NewUpdate(0))
	for update := range updates {
		b.logger.Debugf("Received update: %+v", update)
		if update.CallbackQuery != nil {
			b.handleCallbackQuery(update.CallbackQuery)
			continue
		}
		if update.Message != nil {
			b.handleMessage(update.Message)
		}
	}
}

// handleCallbackQuery applies one approve/reject tap. The callback is always
// answered, whatever the outcome.
func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	ctx := context.Background()

	if callback.Message == nil {
		b.answerCallback(callback.ID, "Unhandled action.")
		return
	}

	chatID := strconv.FormatInt(callback.Message.Chat.ID, 10)
	ack, settled := b.service.Decide(ctx, chatID, callback.Data)
	b.answerCallback(callback.ID, ack)

	if settled {
		edit := tgbotapi.NewEditMessageReplyMarkup(
			callback.Message.Chat.ID,
			callback.Message.MessageID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
		)
		if _, err := b.API.Request(edit); err != nil {
			b.logger.Warnf("Failed to clear keyboard for chat %s: %v", chatID, err)
		}
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		text := fmt.Sprintf(
			"👋 This bot relays your trade alerts for approval.\n\n"+
				"Your chat id is <code>%d</code>.\n"+
				"Send it to the administrator to link your account.",
			message.Chat.ID,
		)
		b.sendMessage(message.Chat.ID, text)
	case "id":
		b.sendMessage(message.Chat.ID, fmt.Sprintf("Your chat id is <code>%d</code>.", message.Chat.ID))
	default:
		b.sendMessage(message.Chat.ID, "Use the buttons under a proposal to approve or reject it.")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message: %v", err)
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	answer := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.API.Request(answer); err != nil {
		b.logger.Errorf("Failed to answer callback: %v", err)
	}
}
