package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/handlers"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/onboarding"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/reminders"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/timeinput"
	"github.com/smith3v/tg-smile-reminder/pkg/config"
	"github.com/smith3v/tg-smile-reminder/pkg/db"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	"github.com/smith3v/tg-smile-reminder/pkg/notify"
	"github.com/smith3v/tg-smile-reminder/pkg/ui"
)

var commands = []models.BotCommand{
	{Command: "start", Description: "Set up your smile reminders"},
	{Command: "settings", Description: "Change active hours, frequency and timezone"},
	{Command: "quote", Description: "Get a smile right now"},
	{Command: "upcoming", Description: "See your next reminders"},
	{Command: "stop", Description: "Turn reminders off"},
	{Command: "about", Description: "About this bot"},
}

func main() {
	configPath := flag.String("config", "config.json", "path to config.json or config.yaml")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(config.AppConfig.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	rc := config.AppConfig.Reminders
	notify.SetHandlerPolicy(notify.HandlerPolicy{
		PlaySound:       rc.PlaySound,
		ProtectContent:  rc.ProtectContent,
		ShowLinkPreview: rc.ShowLinkPreview,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := []bot.Option{
		bot.WithDefaultHandler(handlers.DefaultHandler),
	}
	b, err := bot.New(config.AppConfig.Telegram.Token, opts...)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, handlers.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypeExact, handlers.HandleSettings)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/quote", bot.MatchTypeExact, handlers.HandleQuote)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/upcoming", bot.MatchTypeExact, handlers.HandleUpcoming)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/stop", bot.MatchTypeExact, handlers.HandleStop)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/about", bot.MatchTypeExact, handlers.HandleAbout)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, ui.CallbackPrefix, bot.MatchTypePrefix, handlers.HandleSettingsCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, onboarding.CallbackPrefix, bot.MatchTypePrefix, handlers.HandleOnboardingCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, notify.QuoteCallbackPrefix, bot.MatchTypePrefix, handlers.HandleQuoteCallback)

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		logger.Warn("failed to register bot commands", "error", err)
	}

	go reminders.StartDelivery(ctx, notify.NewTelegramSender(b), reminders.DeliveryOptions{
		Interval:      time.Duration(rc.DeliveryIntervalSeconds) * time.Second,
		RatePerSecond: float64(rc.SendRatePerSecond),
	})
	go func() {
		if err := reminders.StartRefresh(ctx, rc.RefreshSchedule); err != nil {
			logger.Error("failed to start reminder refresh", "schedule", rc.RefreshSchedule, "error", err)
		}
	}()
	go db.StartReminderCleanup(ctx, db.ReminderCleanupInterval, time.Duration(rc.RetentionDays)*24*time.Hour)
	go timeinput.DefaultManager.StartSweeper(ctx)

	logger.Info("Starting bot...")
	b.Start(ctx)
}
