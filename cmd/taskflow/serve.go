package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"taskflow/internal/api"
	"taskflow/internal/bot"
	"taskflow/internal/logger"
	"taskflow/internal/service"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API, the reminder scheduler and the Telegram bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "listen port (overrides APP_PORT)",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStack(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	cfg := st.cfg
	if port := c.String("port"); port != "" {
		cfg.Port = port
	}

	if cfg.SeedCategories {
		created, err := st.categories.EnsureDefaults(ctx)
		if err != nil {
			return err
		}
		if created > 0 {
			logger.Info("Default categories created", "count", created)
		}
	}

	reminders := service.NewReminderService(st.taskRepo, st.appointmentRepo, service.LogNotifier{}, cfg.Location)

	var telegramBot *bot.Bot
	if cfg.TelegramToken != "" {
		telegramBot, err = bot.New(cfg.TelegramToken, cfg.TelegramChatID, bot.Services{
			Tasks:        st.tasks,
			Appointments: st.appointments,
			Reminders:    reminders,
		}, cfg.Location)
		if err != nil {
			return err
		}
		reminders.UseNotifier(telegramBot)
	} else {
		logger.Info("TELEGRAM_TOKEN not set, reminders go to the log")
	}

	scheduler := service.NewSchedulerService(cfg.Location)
	if _, err := scheduler.ScheduleReminders(ctx, cfg.ReminderInterval, reminders); err != nil {
		return err
	}
	if telegramBot != nil && cfg.SummaryTime != "" {
		if _, err := scheduler.ScheduleSummary(ctx, cfg.SummaryTime, reminders, telegramBot.SendSummary); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	if telegramBot != nil {
		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Bot stopped with error", "error", err)
			}
		}()
	}

	app := api.NewApp(api.Services{
		Tasks:        st.tasks,
		Appointments: st.appointments,
		Categories:   st.categories,
	}, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		Location:    cfg.Location,
		Ping:        st.ping,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Shutdown complete")
	return nil
}
