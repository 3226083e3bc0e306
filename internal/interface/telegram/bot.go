package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/maktab-hub/maktab-classroom-bot/internal/application/command"
	"github.com/maktab-hub/maktab-classroom-bot/internal/application/query"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/registration"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/review"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
	"github.com/maktab-hub/maktab-classroom-bot/internal/infrastructure/external/telegram"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/handler"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/handler/callback"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/middleware"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/presenter"
	"github.com/maktab-hub/maktab-classroom-bot/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the Telegram bot.
type BotConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// APIBaseURL overrides the Bot API endpoint (tests, local servers).
	// Empty means the public endpoint.
	APIBaseURL string

	// PollingTimeout is the timeout for long polling (in seconds).
	PollingTimeout int

	// Debug enables debug logging.
	Debug bool

	// Logger for structured logging.
	Logger *slog.Logger

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int

	// GracefulShutdownTimeout is the timeout for graceful shutdown.
	GracefulShutdownTimeout time.Duration
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig(token string) BotConfig {
	return BotConfig{
		Token:                   token,
		PollingTimeout:          30,
		Debug:                   false,
		Logger:                  slog.Default(),
		MaxConcurrentUpdates:    100,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// UserLocker serializes update processing per user, so a double-tap on
// a button or a fast message pair cannot interleave session steps.
type UserLocker interface {
	LockUser(id student.TelegramID) func()
}

// BotDependencies contains all dependencies for the bot handlers.
type BotDependencies struct {
	// Commands
	Registration *command.RegistrationHandler
	Accept       *command.AcceptSubmissionHandler
	Resolve      *command.ResolveGradeHandler

	// Queries
	TallyQuery   *query.GetStudentTallyHandler
	GroupQuery   *query.GetGroupSummaryHandler
	MonthlyQuery *query.GetMonthlySummaryHandler

	// Session storage and per-user serialization.
	Sessions registration.Table
	Locker   UserLocker

	// TeacherID is the single designated reviewer.
	TeacherID student.TelegramID

	// TeacherChatID is where review tickets go; defaults to TeacherID
	// (the teacher's private chat).
	TeacherChatID int64
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// ══════════════════════════════════════════════════════════════════════════════

// Bot is the main Telegram bot controller.
type Bot struct {
	config BotConfig
	client *telegram.Client
	router *Router
	logger *slog.Logger

	// Handlers
	startHandler  *handler.StartHandler
	statsHandler  *handler.StatsHandler
	helpHandler   *handler.HelpHandler
	groupCallback *callback.GroupHandler

	// Commands driven directly by the bot (multi-chat side effects).
	accept  *command.AcceptSubmissionHandler
	resolve *command.ResolveGradeHandler

	locker        UserLocker
	teacherID     student.TelegramID
	teacherChatID int64

	// Middleware
	rateLimiter *middleware.RateLimiter
	recovery    *middleware.RecoveryMiddleware

	// Student notifications are retried; a lost grade notice is worse
	// than a delayed one.
	notifyRetrier *retry.Retrier

	// Lifecycle management
	running   bool
	runningMu sync.RWMutex
	updateSem chan struct{}
	wg        sync.WaitGroup

	stats *BotStats
}

// BotStats holds runtime statistics.
type BotStats struct {
	mu              sync.RWMutex
	StartedAt       time.Time
	UpdatesReceived int64
	UpdatesHandled  int64
	ErrorsCount     int64
	CommandsCount   map[string]int64
}

// NewBot creates a new Telegram bot with all dependencies.
func NewBot(config BotConfig, deps BotDependencies) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if deps.TeacherID == 0 {
		return nil, errors.New("teacher id is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if deps.TeacherChatID == 0 {
		deps.TeacherChatID = int64(deps.TeacherID)
	}

	clientConfig := telegram.DefaultClientConfig(config.Token)
	clientConfig.Logger = config.Logger
	clientConfig.Debug = config.Debug
	if config.APIBaseURL != "" {
		clientConfig.BaseURL = config.APIBaseURL
	}
	client := telegram.NewClient(clientConfig)

	rateLimitConfig := middleware.DefaultRateLimitConfig()
	rateLimitConfig.WhitelistedUsers[int64(deps.TeacherID)] = true

	bot := &Bot{
		config:        config,
		client:        client,
		logger:        config.Logger,
		startHandler:  handler.NewStartHandler(deps.Registration, deps.Sessions),
		statsHandler:  handler.NewStatsHandler(deps.TallyQuery, deps.GroupQuery, deps.MonthlyQuery, deps.Registration.Roster(), deps.TeacherID),
		helpHandler:   handler.NewHelpHandler(deps.TeacherID),
		groupCallback: callback.NewGroupHandler(deps.Registration),
		accept:        deps.Accept,
		resolve:       deps.Resolve,
		locker:        deps.Locker,
		teacherID:     deps.TeacherID,
		teacherChatID: deps.TeacherChatID,
		rateLimiter:   middleware.NewRateLimiter(rateLimitConfig),
		recovery:      middleware.NewRecoveryMiddleware(middleware.DefaultRecoveryConfig()),
		notifyRetrier: retry.TelegramRetrier(),
		updateSem:     make(chan struct{}, config.MaxConcurrentUpdates),
		stats: &BotStats{
			CommandsCount: make(map[string]int64),
		},
	}

	router := NewRouter(RouterConfig{Logger: config.Logger, Debug: config.Debug})
	router.RegisterCommand("start", bot.handleStartCommand)
	router.RegisterCommand("stats", bot.handleStatsCommand)
	router.RegisterCommand("group", bot.handleGroupCommand)
	router.RegisterCommand("monthly", bot.handleMonthlyCommand)
	router.RegisterCommand("help", bot.handleHelpCommand)
	router.RegisterCallbackPrefix("group_", bot.handleGroupCallback)
	router.RegisterCallbackPrefix("grade_", bot.handleGradeCallback)
	router.RegisterCallbackPrefix("stats_", bot.handleStatsCallback)
	router.RegisterCallbackPrefix("monthly_", bot.handleMonthlyCallback)
	bot.router = router

	return bot, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE MANAGEMENT
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the bot and begins receiving updates via long polling.
func (b *Bot) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.stats.StartedAt = time.Now()
	b.runningMu.Unlock()

	b.logger.Info("starting telegram bot", "debug", b.config.Debug)

	if err := b.verifyToken(ctx); err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}

	// Long polling requires no registered webhook.
	if err := b.client.DeleteWebhook(ctx, false); err != nil {
		b.logger.Warn("failed to delete webhook", "error", err)
	}

	return b.client.StartPolling(ctx, func(ctx context.Context, update *telegram.Update) error {
		return b.handleUpdate(ctx, update)
	})
}

// Stop gracefully stops the bot.
func (b *Bot) Stop(ctx context.Context) error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	b.logger.Info("stopping telegram bot")

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.config.GracefulShutdownTimeout):
		b.logger.Warn("graceful shutdown timeout exceeded")
	case <-ctx.Done():
		b.logger.Warn("context cancelled during shutdown")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the bot is currently running.
func (b *Bot) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

// verifyToken verifies the bot token by calling getMe.
func (b *Bot) verifyToken(ctx context.Context) error {
	me, err := b.client.GetMe(ctx)
	if err != nil {
		return err
	}

	b.logger.Info("bot verified",
		"id", me.ID,
		"username", me.Username,
	)

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE HANDLING
// ══════════════════════════════════════════════════════════════════════════════

// handleUpdate processes a single Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update *telegram.Update) error {
	select {
	case b.updateSem <- struct{}{}:
		defer func() { <-b.updateSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	b.wg.Add(1)
	defer b.wg.Done()

	b.stats.mu.Lock()
	b.stats.UpdatesReceived++
	b.stats.mu.Unlock()

	startTime := time.Now()

	var err error
	switch {
	case update.Message != nil:
		err = b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.handleCallbackQuery(ctx, update.CallbackQuery)
	default:
		// Unknown update type - ignore
		return nil
	}

	if err != nil {
		b.stats.mu.Lock()
		b.stats.ErrorsCount++
		b.stats.mu.Unlock()
		b.logger.Error("failed to handle update",
			"update_id", update.UpdateID,
			"error", err,
			"duration", time.Since(startTime),
		)
	} else {
		b.stats.mu.Lock()
		b.stats.UpdatesHandled++
		b.stats.mu.Unlock()
	}

	return err
}

// handleMessage processes a Telegram message.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg == nil || msg.From == nil || !telegram.IsPrivateChat(msg) {
		return nil
	}

	telegramID := msg.From.ID
	chatID := msg.Chat.ID

	ctx = middleware.ContextWithTelegramID(ctx, telegramID)

	// Шаги одного пользователя обрабатываются строго последовательно.
	unlock := b.locker.LockUser(student.TelegramID(telegramID))
	defer unlock()

	limit := b.rateLimiter.Check(ctx, telegramID)
	if !limit.Allowed {
		_, err := b.client.SendHTML(ctx, chatID, limit.ResponseMessage)
		return err
	}

	cmd := telegram.ExtractCommand(msg)
	args := telegram.ExtractCommandArgs(msg)

	var op string
	var run func() error
	switch {
	case cmd != "":
		op = "/" + cmd
		b.stats.mu.Lock()
		b.stats.CommandsCount[cmd]++
		b.stats.mu.Unlock()
		run = func() error {
			return b.router.HandleCommand(ctx, cmd, CommandContext{
				TelegramID: telegramID,
				ChatID:     chatID,
				MessageID:  int(msg.MessageID),
				Args:       args,
				Message:    msg,
				Client:     b.client,
			})
		}

	case msg.VideoNote != nil:
		op = "video_note"
		run = func() error {
			return b.handleVideoNote(ctx, telegramID, chatID, msg)
		}

	case msg.Text != "":
		op = "text"
		run = func() error {
			resp, err := b.startHandler.HandleText(ctx, student.TelegramID(telegramID), msg.Text)
			if sendErr := respond(ctx, b.client, chatID, 0, resp); sendErr != nil {
				return sendErr
			}
			return err
		}

	default:
		return nil
	}

	result, err := b.recovery.RecoverWithHandler(ctx, telegramID, op, run)
	if result.Recovered {
		_, sendErr := b.client.SendHTML(ctx, chatID, result.UserMessage)
		return sendErr
	}
	return err
}

// handleCallbackQuery processes a callback query from an inline keyboard.
func (b *Bot) handleCallbackQuery(ctx context.Context, cq *telegram.CallbackQuery) error {
	if cq == nil || cq.From == nil {
		return nil
	}

	telegramID := cq.From.ID
	chatID := int64(0)
	messageID := int64(0)
	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
		messageID = cq.Message.MessageID
	}

	ctx = middleware.ContextWithTelegramID(ctx, telegramID)

	unlock := b.locker.LockUser(student.TelegramID(telegramID))
	defer unlock()

	// Answer callback query first (removes loading state).
	defer func() {
		_ = b.client.AnswerCallbackQuery(ctx, cq.ID, "", false)
	}()

	limit := b.rateLimiter.Check(ctx, telegramID)
	if !limit.Allowed {
		return b.client.AnswerCallbackQuery(ctx, cq.ID, limit.ResponseMessage, true)
	}

	result, err := b.recovery.RecoverWithHandler(ctx, telegramID, "callback:"+cq.Data, func() error {
		return b.router.HandleCallback(ctx, cq.Data, CallbackContext{
			TelegramID: telegramID,
			ChatID:     chatID,
			MessageID:  int(messageID),
			QueryID:    cq.ID,
			Data:       cq.Data,
			Query:      cq,
			Client:     b.client,
		})
	})
	if result.Recovered {
		if chatID > 0 {
			_, _ = b.client.SendHTML(ctx, chatID, result.UserMessage)
		}
		return nil
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (b *Bot) handleStartCommand(ctx context.Context, cmdCtx CommandContext) error {
	resp, err := b.startHandler.HandleStart(ctx, student.TelegramID(cmdCtx.TelegramID))
	if sendErr := respond(ctx, cmdCtx.Client, cmdCtx.ChatID, 0, resp); sendErr != nil {
		return sendErr
	}
	return err
}

func (b *Bot) handleStatsCommand(ctx context.Context, cmdCtx CommandContext) error {
	resp, err := b.statsHandler.HandleStats(ctx, student.TelegramID(cmdCtx.TelegramID))
	if sendErr := respond(ctx, cmdCtx.Client, cmdCtx.ChatID, 0, resp); sendErr != nil {
		return sendErr
	}
	return err
}

func (b *Bot) handleGroupCommand(ctx context.Context, cmdCtx CommandContext) error {
	resp, err := b.statsHandler.HandleGroup(ctx, student.TelegramID(cmdCtx.TelegramID), cmdCtx.Args)
	if sendErr := respond(ctx, cmdCtx.Client, cmdCtx.ChatID, 0, resp); sendErr != nil {
		return sendErr
	}
	return err
}

func (b *Bot) handleMonthlyCommand(ctx context.Context, cmdCtx CommandContext) error {
	resp, err := b.statsHandler.HandleMonthly(ctx, student.TelegramID(cmdCtx.TelegramID), cmdCtx.Args)
	if sendErr := respond(ctx, cmdCtx.Client, cmdCtx.ChatID, 0, resp); sendErr != nil {
		return sendErr
	}
	return err
}

func (b *Bot) handleHelpCommand(ctx context.Context, cmdCtx CommandContext) error {
	resp := b.helpHandler.Handle(ctx, student.TelegramID(cmdCtx.TelegramID))
	return respond(ctx, cmdCtx.Client, cmdCtx.ChatID, 0, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION FLOW
// Видеозапись ученика: принять, переслать учителю вместе с карточкой и
// клавиатурой оценок, подтвердить ученику. Если доставка учителю не
// удалась, ожидающая запись снимается и ученик может прислать работу
// ещё раз.
// ══════════════════════════════════════════════════════════════════════════════

func (b *Bot) handleVideoNote(ctx context.Context, telegramID, chatID int64, msg *telegram.Message) error {
	ticket, err := b.accept.Handle(ctx, student.TelegramID(telegramID), chatID)
	if err != nil {
		var text string
		switch {
		case shared.IsNotFound(err):
			text = presenter.NotRegistered()
			err = nil
		case errors.Is(err, shared.ErrInvalidState):
			text = presenter.NoTopic()
			err = nil
		default:
			text = presenter.InternalError()
		}
		if _, sendErr := b.client.SendHTML(ctx, chatID, text); sendErr != nil {
			return sendErr
		}
		return err
	}

	fwd, err := b.client.ForwardMessage(ctx, b.teacherChatID, chatID, msg.MessageID)
	if err != nil {
		b.accept.Discard(ctx, ticket.SubmissionID)
		_, _ = b.client.SendHTML(ctx, chatID, presenter.InternalError())
		return fmt.Errorf("forward submission: %w", err)
	}

	info, err := b.client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      b.teacherChatID,
		Text:        presenter.ReviewTicket(ticket.StudentName, ticket.Group, ticket.Topic, ticket.Tally),
		ParseMode:   "HTML",
		ReplyMarkup: convertKeyboard(presenter.GradeKeyboard(ticket.SubmissionID)),
	})
	if err != nil {
		b.accept.Discard(ctx, ticket.SubmissionID)
		_ = b.client.DeleteMessage(ctx, b.teacherChatID, fwd.MessageID)
		_, _ = b.client.SendHTML(ctx, chatID, presenter.InternalError())
		return fmt.Errorf("send review ticket: %w", err)
	}

	if err := b.accept.AttachMessages(ctx, ticket.SubmissionID, int(fwd.MessageID), int(info.MessageID)); err != nil {
		b.logger.Warn("failed to attach reviewer message ids", "error", err)
	}

	_, err = b.client.SendHTML(ctx, chatID, presenter.SubmissionReceived())
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADING FLOW
// ══════════════════════════════════════════════════════════════════════════════

func (b *Bot) handleGroupCallback(ctx context.Context, cbCtx CallbackContext) error {
	username := ""
	if cbCtx.Query != nil && cbCtx.Query.From != nil {
		username = cbCtx.Query.From.Username
	}

	resp, err := b.groupCallback.Handle(ctx, callback.GroupRequest{
		UserID:   student.TelegramID(cbCtx.TelegramID),
		Username: username,
		Data:     cbCtx.Data,
	})
	if sendErr := respond(ctx, cbCtx.Client, cbCtx.ChatID, cbCtx.MessageID, resp); sendErr != nil {
		return sendErr
	}
	return err
}

func (b *Bot) handleGradeCallback(ctx context.Context, cbCtx CallbackContext) error {
	id, gradeValue, ok := parseGradeCallback(cbCtx.Data)
	if !ok {
		return nil
	}

	outcome, err := b.resolve.Handle(ctx, student.TelegramID(cbCtx.TelegramID), id, gradeValue, "")
	if err != nil {
		switch {
		case shared.IsUnauthorized(err):
			return b.client.AnswerCallbackQuery(ctx, cbCtx.QueryID, presenter.NotReviewer(), true)
		case shared.IsNotFound(err):
			// Повторное нажатие той же кнопки.
			return b.client.AnswerCallbackQuery(ctx, cbCtx.QueryID, presenter.AlreadyResolved(), true)
		case shared.IsValidation(err):
			return nil
		default:
			_ = b.client.AnswerCallbackQuery(ctx, cbCtx.QueryID, presenter.InternalError(), true)
			return err
		}
	}

	sub := outcome.Submission

	// Карточка учителя превращается в итоговую, клавиатура снимается.
	if cbCtx.MessageID > 0 {
		if _, err := b.client.EditMessageText(ctx, cbCtx.ChatID, int64(cbCtx.MessageID),
			presenter.ReviewResolved(sub.StudentName, sub.Topic, outcome.Grade.Int()), "HTML", nil); err != nil {
			b.logger.Warn("failed to edit review card", "error", err)
		}
	}

	// Пересланное видео убирается из чата учителя.
	if sub.ForwardedMessageID > 0 {
		if err := b.client.DeleteMessage(ctx, b.teacherChatID, int64(sub.ForwardedMessageID)); err != nil {
			b.logger.Warn("failed to delete forwarded submission", "error", err)
		}
	}

	// Оценка уже в журнале; уведомление ученика повторяем с бэкоффом.
	notice := presenter.GradeNotice(sub.Topic, outcome.Grade.Int(), outcome.Tally)
	notifyErr := b.notifyRetrier.Do(ctx, func(ctx context.Context) error {
		if _, err := b.client.SendHTML(ctx, sub.StudentChatID, notice); err != nil {
			if telegram.IsUserBlocked(err) || telegram.IsChatNotFound(err) {
				return retry.Permanent(err)
			}
			return retry.Retryable(err)
		}
		return nil
	})
	if notifyErr != nil {
		b.logger.Error("failed to notify student about grade",
			"student_id", sub.StudentID,
			"error", notifyErr,
		)
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REVIEWER DRILL-DOWN
// Кнопки под /group и /monthly: сводка группы и месячный дайджест
// редактируются на месте вместо отправки нового сообщения.
// ══════════════════════════════════════════════════════════════════════════════

func (b *Bot) handleStatsCallback(ctx context.Context, cbCtx CallbackContext) error {
	code := strings.TrimPrefix(cbCtx.Data, "stats_")

	resp, err := b.statsHandler.HandleGroup(ctx, student.TelegramID(cbCtx.TelegramID), code)
	if resp != nil {
		resp.Edit = true
	}
	if sendErr := respond(ctx, cbCtx.Client, cbCtx.ChatID, cbCtx.MessageID, resp); sendErr != nil {
		return sendErr
	}
	return err
}

func (b *Bot) handleMonthlyCallback(ctx context.Context, cbCtx CallbackContext) error {
	code := strings.TrimPrefix(cbCtx.Data, "monthly_")
	if code == "all" {
		code = ""
	}

	resp, err := b.statsHandler.HandleMonthly(ctx, student.TelegramID(cbCtx.TelegramID), code)
	if resp != nil {
		resp.Edit = true
	}
	if sendErr := respond(ctx, cbCtx.Client, cbCtx.ChatID, cbCtx.MessageID, resp); sendErr != nil {
		return sendErr
	}
	return err
}

// parseGradeCallback splits "grade_<id>_<n>" into its parts.
func parseGradeCallback(data string) (review.SubmissionID, int, bool) {
	rest := strings.TrimPrefix(data, "grade_")
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 || idx == len(rest)-1 {
		return "", 0, false
	}

	gradeValue, err := strconv.Atoi(rest[idx+1:])
	if err != nil {
		return "", 0, false
	}

	return review.SubmissionID(rest[:idx]), gradeValue, true
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS
// ══════════════════════════════════════════════════════════════════════════════

// GetStats returns current bot statistics.
func (b *Bot) GetStats() map[string]interface{} {
	b.stats.mu.RLock()
	defer b.stats.mu.RUnlock()

	commandsCopy := make(map[string]int64)
	for k, v := range b.stats.CommandsCount {
		commandsCopy[k] = v
	}

	return map[string]interface{}{
		"started_at":       b.stats.StartedAt,
		"uptime":           time.Since(b.stats.StartedAt).String(),
		"updates_received": b.stats.UpdatesReceived,
		"updates_handled":  b.stats.UpdatesHandled,
		"errors_count":     b.stats.ErrorsCount,
		"commands_count":   commandsCopy,
		"running":          b.IsRunning(),
	}
}

// Client returns the Telegram client for direct API access.
// Use sparingly - prefer going through handlers.
func (b *Bot) Client() *telegram.Client {
	return b.client
}
