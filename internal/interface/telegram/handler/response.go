// Package handler contains Telegram update handlers. Handlers translate
// application results into rendered responses; the bot layer does the
// actual sending and editing.
package handler

import (
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/presenter"
)

// Response is a rendered reply: text, optional keyboard, and whether the
// originating message should be edited instead of answered.
type Response struct {
	Text      string
	ParseMode string
	Keyboard  *presenter.InlineKeyboard

	// Edit is set for callback responses that replace the keyboard message.
	Edit bool
}

// HTML builds an HTML-formatted response.
func HTML(text string) *Response {
	return &Response{Text: text, ParseMode: "HTML"}
}

// HTMLWithKeyboard builds an HTML response with an inline keyboard.
func HTMLWithKeyboard(text string, kb *presenter.InlineKeyboard) *Response {
	return &Response{Text: text, ParseMode: "HTML", Keyboard: kb}
}

// EditHTML builds a response that edits the originating message.
func EditHTML(text string, kb *presenter.InlineKeyboard) *Response {
	return &Response{Text: text, ParseMode: "HTML", Keyboard: kb, Edit: true}
}
