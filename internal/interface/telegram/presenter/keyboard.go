package presenter

import (
	"fmt"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/review"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// INLINE KEYBOARD TYPES
// Library-agnostic keyboard representation; the transport converts these
// to the Bot API format. Callback data formats used by the bot:
//   group_page_<n>    - flip the group keyboard to page n
//   group_pick_<code> - propose a group
//   group_confirm     - confirm the proposed group
//   group_cancel      - back to the group list
//   grade_<id>_<n>    - resolve submission <id> with grade n
//   stats_<code>      - group summary for <code> (reviewer)
//   monthly_<code>    - monthly digest for <code> (reviewer)
//   monthly_all       - monthly digest across all groups (reviewer)
// ══════════════════════════════════════════════════════════════════════════════

// InlineKeyboard represents an inline keyboard.
type InlineKeyboard struct {
	Rows [][]InlineButton
}

// InlineButton represents a single inline button.
type InlineButton struct {
	// Text is the button text.
	Text string

	// CallbackData is the callback data (for callback buttons).
	CallbackData string

	// URL is the URL to open (for URL buttons).
	URL string
}

// NewInlineKeyboard creates a new empty inline keyboard.
func NewInlineKeyboard() *InlineKeyboard {
	return &InlineKeyboard{
		Rows: make([][]InlineButton, 0),
	}
}

// AddRow adds a row of buttons.
func (k *InlineKeyboard) AddRow(buttons ...InlineButton) *InlineKeyboard {
	k.Rows = append(k.Rows, buttons)
	return k
}

// CallbackButton creates a callback button.
func CallbackButton(text, callbackData string) InlineButton {
	return InlineButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUP PICKER
// ══════════════════════════════════════════════════════════════════════════════

// GroupsPerPage is how many group buttons fit on one keyboard page.
const GroupsPerPage = 8

// groupColumns is how many group buttons go in one row.
const groupColumns = 2

// PageCount returns the number of keyboard pages needed for n groups.
func PageCount(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + GroupsPerPage - 1) / GroupsPerPage
}

// GroupKeyboard builds one page of the group picker. The page index is
// clamped into the valid range, so stale navigation buttons stay safe.
func GroupKeyboard(roster *student.Roster, page int) *InlineKeyboard {
	codes := roster.Codes()
	pages := PageCount(len(codes))

	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}

	start := page * GroupsPerPage
	end := start + GroupsPerPage
	if end > len(codes) {
		end = len(codes)
	}

	kb := NewInlineKeyboard()
	var row []InlineButton
	for _, code := range codes[start:end] {
		row = append(row, CallbackButton(string(code), fmt.Sprintf("group_pick_%s", code)))
		if len(row) == groupColumns {
			kb.AddRow(row...)
			row = nil
		}
	}
	if len(row) > 0 {
		kb.AddRow(row...)
	}

	if pages > 1 {
		kb.AddRow(
			CallbackButton("◀️", fmt.Sprintf("group_page_%d", page-1)),
			CallbackButton(fmt.Sprintf("%d/%d", page+1, pages), fmt.Sprintf("group_page_%d", page)),
			CallbackButton("▶️", fmt.Sprintf("group_page_%d", page+1)),
		)
	}

	return kb
}

// ConfirmGroupKeyboard builds the confirm/cancel step keyboard.
func ConfirmGroupKeyboard() *InlineKeyboard {
	return NewInlineKeyboard().AddRow(
		CallbackButton("✅ Ha", "group_confirm"),
		CallbackButton("↩️ Yo'q", "group_cancel"),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// REVIEWER DRILL-DOWN KEYBOARDS
// ══════════════════════════════════════════════════════════════════════════════

// GroupListKeyboard builds one button per roster group with the given
// callback prefix. Used for the reviewer's /group and /monthly pickers.
func GroupListKeyboard(roster *student.Roster, prefix string) *InlineKeyboard {
	kb := NewInlineKeyboard()
	var row []InlineButton
	for _, code := range roster.Codes() {
		row = append(row, CallbackButton(string(code), prefix+string(code)))
		if len(row) == 4 {
			kb.AddRow(row...)
			row = nil
		}
	}
	if len(row) > 0 {
		kb.AddRow(row...)
	}
	return kb
}

// MonthlyKeyboard is the group picker for the monthly digest, with an
// extra all-groups button.
func MonthlyKeyboard(roster *student.Roster) *InlineKeyboard {
	kb := GroupListKeyboard(roster, "monthly_")
	kb.AddRow(CallbackButton("📊 Hammasi", "monthly_all"))
	return kb
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE KEYBOARD
// ══════════════════════════════════════════════════════════════════════════════

// GradeKeyboard builds the 1..5 grade row for a pending submission.
func GradeKeyboard(id review.SubmissionID) *InlineKeyboard {
	row := make([]InlineButton, 0, 5)
	for g := 1; g <= 5; g++ {
		row = append(row, CallbackButton(
			fmt.Sprintf("%d", g),
			fmt.Sprintf("grade_%s_%d", id, g),
		))
	}
	return NewInlineKeyboard().AddRow(row...)
}
