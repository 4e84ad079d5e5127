package main

import (
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"traderelay/config"
	"traderelay/db"
	"traderelay/internal/bot"
	"traderelay/internal/broker"
	"traderelay/internal/jobs"
	"traderelay/internal/repository"
	"traderelay/internal/risk"
	"traderelay/internal/server"
	"traderelay/internal/service"
	"traderelay/utils"
)

func main() {
	logger := utils.InitLogger()
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, true, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)

	// Telegram calls are bounded so a slow API never stalls proposal work.
	telegramBot, err := tgbotapi.NewBotAPIWithClient(
		cfg.TelegramBotToken,
		tgbotapi.APIEndpoint,
		&http.Client{Timeout: 30 * time.Second},
	)
	if err != nil {
		logger.Fatal("Failed to create bot API: ", err)
	}

	notifier := bot.NewNotifier(telegramBot, logger)
	svc := service.NewService(
		repo,
		notifier,
		risk.AllowAll{},
		broker.ForBackend(cfg.BrokerBackend),
		logger,
	)

	telegram := bot.NewBot(telegramBot, svc, logger)
	go telegram.Start()

	reminder := jobs.NewReminderJob(
		svc,
		logger,
		time.Duration(cfg.ReminderIntervalMin)*time.Minute,
		time.Duration(cfg.ReminderAfterMin)*time.Minute,
	)
	if err := reminder.Start(); err != nil {
		logger.Fatal("Failed to start reminder job: ", err)
	}
	defer reminder.Stop()

	srv := server.NewServer(svc, &cfg, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal("HTTP server stopped: ", err)
	}
}
