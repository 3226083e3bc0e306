// Package telegram implements the Telegram bot interface for the
// classroom workflow: registration, topic declaration, video note
// submissions, grading, and statistics.
package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/maktab-hub/maktab-classroom-bot/internal/infrastructure/external/telegram"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/handler"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables debug logging for routing decisions.
	Debug bool
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT TYPES
// These types carry context information through the routing process.
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext contains context for command handling.
type CommandContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID where the command was sent.
	ChatID int64

	// MessageID is the ID of the message containing the command.
	MessageID int

	// Args is the command arguments (text after the command).
	Args string

	// Message is the original Telegram message.
	Message *telegram.Message

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// CallbackContext contains context for callback query handling.
type CallbackContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID where the callback originated.
	ChatID int64

	// MessageID is the ID of the message with the inline keyboard.
	MessageID int

	// QueryID is the callback query ID (for answering).
	QueryID string

	// Data is the callback data string.
	Data string

	// Query is the original callback query.
	Query *telegram.CallbackQuery

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// CommandFunc handles one bot command.
type CommandFunc func(ctx context.Context, cmdCtx CommandContext) error

// CallbackFunc handles callbacks matching one prefix.
type CallbackFunc func(ctx context.Context, cbCtx CallbackContext) error

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Routes incoming updates to appropriate handlers. Commands match by
// name, callbacks by the longest registered prefix.
// ══════════════════════════════════════════════════════════════════════════════

// Router routes Telegram updates to registered handlers.
type Router struct {
	config RouterConfig
	logger *slog.Logger

	mu               sync.RWMutex
	commands         map[string]CommandFunc
	callbackPrefixes map[string]CallbackFunc

	defaultCommand CommandFunc
}

// NewRouter creates a new router.
func NewRouter(config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	r := &Router{
		config:           config,
		logger:           config.Logger,
		commands:         make(map[string]CommandFunc),
		callbackPrefixes: make(map[string]CallbackFunc),
	}
	r.defaultCommand = r.handleUnknownCommand

	return r
}

// RegisterCommand registers a handler for a command (without the "/").
func (r *Router) RegisterCommand(command string, fn CommandFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[command] = fn

	if r.config.Debug {
		r.logger.Debug("registered command handler", "command", command)
	}
}

// RegisterCallbackPrefix registers a handler for callbacks matching a
// prefix (e.g. "group_").
func (r *Router) RegisterCallbackPrefix(prefix string, fn CallbackFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.callbackPrefixes[prefix] = fn

	if r.config.Debug {
		r.logger.Debug("registered callback prefix handler", "prefix", prefix)
	}
}

// HandleCommand routes a command to its handler.
func (r *Router) HandleCommand(ctx context.Context, command string, cmdCtx CommandContext) error {
	r.mu.RLock()
	fn, ok := r.commands[command]
	r.mu.RUnlock()

	if !ok {
		if r.config.Debug {
			r.logger.Debug("no handler for command", "command", command)
		}
		return r.defaultCommand(ctx, cmdCtx)
	}

	return fn(ctx, cmdCtx)
}

// HandleCallback routes a callback to the longest matching prefix handler.
func (r *Router) HandleCallback(ctx context.Context, data string, cbCtx CallbackContext) error {
	r.mu.RLock()
	var matchedPrefix string
	var matched CallbackFunc
	for prefix, fn := range r.callbackPrefixes {
		if strings.HasPrefix(data, prefix) && len(prefix) > len(matchedPrefix) {
			matchedPrefix = prefix
			matched = fn
		}
	}
	r.mu.RUnlock()

	if matched == nil {
		r.logger.Warn("unknown callback", "data", data)
		return nil
	}

	return matched(ctx, cbCtx)
}

// handleUnknownCommand handles commands without a registered handler.
func (r *Router) handleUnknownCommand(ctx context.Context, cmdCtx CommandContext) error {
	_, err := cmdCtx.Client.SendHTML(ctx, cmdCtx.ChatID, presenter.UnknownCommand())
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// respond sends a handler response: either a fresh message or an edit of
// the originating keyboard message.
func respond(ctx context.Context, client *telegram.Client, chatID int64, messageID int, resp *handler.Response) error {
	if resp == nil {
		return nil
	}

	if resp.Edit && messageID > 0 {
		_, err := client.EditMessageText(ctx, chatID, int64(messageID), resp.Text, resp.ParseMode, convertKeyboard(resp.Keyboard))
		return err
	}

	params := telegram.SendMessageParams{
		ChatID:    chatID,
		Text:      resp.Text,
		ParseMode: resp.ParseMode,
	}
	if resp.Keyboard != nil {
		params.ReplyMarkup = convertKeyboard(resp.Keyboard)
	}

	_, err := client.SendMessage(ctx, params)
	return err
}

// convertKeyboard converts presenter.InlineKeyboard to telegram.InlineKeyboardMarkup.
func convertKeyboard(kb *presenter.InlineKeyboard) *telegram.InlineKeyboardMarkup {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}

	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: make([][]telegram.InlineKeyboardButton, len(kb.Rows)),
	}

	for i, row := range kb.Rows {
		markup.InlineKeyboard[i] = make([]telegram.InlineKeyboardButton, len(row))
		for j, btn := range row {
			markup.InlineKeyboard[i][j] = telegram.InlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.CallbackData,
				URL:          btn.URL,
			}
		}
	}

	return markup
}
