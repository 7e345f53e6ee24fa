package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/service"
)

const (
	cbDonePrefix = "done:"

	maxListed = 20
)

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Services struct {
	Tasks        *service.TaskService
	Appointments *service.AppointmentService
	Reminders    *service.ReminderService
}

// Bot serves a single chat: it answers commands there and delivers
// reminders and the daily agenda to it.
type Bot struct {
	api    *tgbotapi.BotAPI
	sender sender
	chatID int64
	svc    Services
	loc    *time.Location
	now    func() time.Time
}

func New(token string, chatID int64, svc Services, loc *time.Location) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("Bot authorized", "account", api.Self.UserName, "chat_id", chatID)

	b := newBot(api, chatID, svc, loc)
	b.api = api
	return b, nil
}

func newBot(s sender, chatID int64, svc Services, loc *time.Location) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		sender: s,
		chatID: chatID,
		svc:    svc,
		loc:    loc,
		now:    time.Now,
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot is not connected")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	logger.Info("Start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				logger.Error("Handle callback failed", "error", err)
			}
		case update.Message != nil:
			if err := b.handleMessage(ctx, update.Message); err != nil {
				logger.Error("Handle message failed", "error", err)
			}
		}
	}

	return nil
}

// Notify delivers a due reminder to the chat.
func (b *Bot) Notify(ctx context.Context, r service.Reminder) error {
	msg := tgbotapi.NewMessage(b.chatID, service.FormatReminder(r, b.now()))
	msg.ParseMode = tgbotapi.ModeHTML
	if r.Kind == service.KindTask {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(doneButton(r.ID, r.Title)),
		)
	}
	if _, err := b.sender.Send(msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	logger.DebugContext(ctx, "Reminder delivered", "kind", r.Kind, "id", r.ID)
	return nil
}

// SendSummary posts an already rendered agenda.
func (b *Bot) SendSummary(ctx context.Context, text string) error {
	return b.sendText(b.chatID, text)
}

func (b *Bot) allowed(chat *tgbotapi.Chat) bool {
	return chat != nil && chat.ID == b.chatID
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.allowed(msg.Chat) {
		logger.Warn("Ignoring message from foreign chat", "chat_id", chatIDOf(msg.Chat))
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}

	logger.Info("Command received", "command", msg.Command(), "args", msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "today":
		return b.handleToday(ctx, msg)
	case "upcoming":
		return b.handleUpcoming(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "search":
		return b.handleSearch(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

const helpText = "🗂 <b>Planner</b>\n" +
	"• /today — today's tasks and appointments\n" +
	"• /upcoming — open tasks after today\n" +
	"• /done &lt;id&gt; — mark a task completed (e.g. /done 3)\n" +
	"• /search &lt;text&gt; — find tasks and appointments\n" +
	"• /help — this message"

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.svc.Reminders.DailySummary(ctx, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the agenda: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleUpcoming(ctx context.Context, msg *tgbotapi.Message) error {
	today := b.now().In(b.loc).Format(model.DateLayout)
	tasks, err := b.svc.Tasks.Upcoming(ctx, today)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "Nothing upcoming. 🎉")
	}

	var builder strings.Builder
	builder.WriteString("⏭ <b>Upcoming</b>\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	lastDate := ""
	for i, task := range tasks {
		if i == maxListed {
			builder.WriteString(fmt.Sprintf("… and %d more\n", len(tasks)-maxListed))
			break
		}
		if task.Date != lastDate {
			builder.WriteString(fmt.Sprintf("\n<b>%s</b>\n", task.Date))
			lastDate = task.Date
		}
		builder.WriteString(service.FormatTask(task))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(doneButton(task.ID, task.Title)))
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.sender.Send(out)
	return err
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Give the task ID: /done 12")
	}

	taskID, err := strconv.ParseUint(strings.TrimPrefix(args, "#"), 10, 32)
	if err != nil || taskID == 0 {
		return b.sendText(msg.Chat.ID, "The task ID must be a positive number.")
	}
	return b.complete(ctx, msg.Chat.ID, uint(taskID))
}

func (b *Bot) complete(ctx context.Context, chatID int64, taskID uint) error {
	task, err := b.svc.Tasks.SetCompleted(ctx, taskID, true)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}

	logger.InfoContext(ctx, "Task completed from chat", "task_id", task.ID)
	return b.sendText(chatID, fmt.Sprintf("✅ Task «%s» is done.", escape(strings.TrimSpace(task.Title))))
}

func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		return b.sendText(msg.Chat.ID, "What should I look for? /search dentist")
	}

	tasks, err := b.svc.Tasks.Search(ctx, text)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Search failed: %s", escape(err.Error())))
	}
	appointments, err := b.svc.Appointments.Search(ctx, text)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Search failed: %s", escape(err.Error())))
	}

	return b.sendText(msg.Chat.ID, searchResults(text, tasks, appointments))
}

func searchResults(text string, tasks []model.Task, appointments []model.Appointment) string {
	if len(tasks) == 0 && len(appointments) == 0 {
		return fmt.Sprintf("🔍 Nothing matches «%s».", escape(text))
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🔍 <b>Results for «%s»</b>\n", escape(text)))
	if len(tasks) > 0 {
		builder.WriteString("\n✅ <b>Tasks</b>\n")
		for i, task := range tasks {
			if i == maxListed {
				builder.WriteString(fmt.Sprintf("… and %d more\n", len(tasks)-maxListed))
				break
			}
			builder.WriteString(task.Date + " ")
			builder.WriteString(service.FormatTask(task))
		}
	}
	if len(appointments) > 0 {
		builder.WriteString("\n📅 <b>Appointments</b>\n")
		for i, appt := range appointments {
			if i == maxListed {
				builder.WriteString(fmt.Sprintf("… and %d more\n", len(appointments)-maxListed))
				break
			}
			builder.WriteString(appt.Date + " ")
			builder.WriteString(service.FormatAppointment(appt))
		}
	}
	return strings.TrimSpace(builder.String())
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.sender.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		logger.Warn("Callback ack failed", "error", err)
	}
	if !b.allowed(cb.Message.Chat) {
		return nil
	}

	if !strings.HasPrefix(cb.Data, cbDonePrefix) {
		return nil
	}
	taskID, err := parseTaskID(cb.Data, cbDonePrefix)
	if err != nil {
		return nil
	}
	return b.complete(ctx, cb.Message.Chat.ID, taskID)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.sender.Send(msg)
	return err
}

func doneButton(id uint, title string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("✅ #%d · %s", id, shortTitle(title, 24)),
		fmt.Sprintf("%s%d", cbDonePrefix, id),
	)
}

func parseTaskID(data, prefix string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 32)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("zero task id")
	}
	return uint(id), nil
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func chatIDOf(chat *tgbotapi.Chat) int64 {
	if chat == nil {
		return 0
	}
	return chat.ID
}

func escape(s string) string {
	return html.EscapeString(s)
}
