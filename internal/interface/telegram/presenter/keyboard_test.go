package presenter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/review"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

func testRoster(t *testing.T, n int) *student.Roster {
	t.Helper()
	codes := make([]student.GroupCode, 0, n)
	for i := 0; i < n; i++ {
		codes = append(codes, student.GroupCode(fmt.Sprintf("g%02d", i)))
	}
	return student.NewRoster(codes)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, PageCount(0))
	assert.Equal(t, 1, PageCount(8))
	assert.Equal(t, 2, PageCount(9))
	assert.Equal(t, 3, PageCount(19))
}

func TestGroupKeyboard_SinglePage(t *testing.T) {
	kb := GroupKeyboard(testRoster(t, 4), 0)

	// 4 кнопки по 2 в ряд, без навигации.
	require.Len(t, kb.Rows, 2)
	assert.Equal(t, "group_pick_g00", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "g00", kb.Rows[0][0].Text)
}

func TestGroupKeyboard_Pagination(t *testing.T) {
	roster := testRoster(t, 19)

	first := GroupKeyboard(roster, 0)
	nav := first.Rows[len(first.Rows)-1]
	require.Len(t, nav, 3)
	assert.Equal(t, "group_page_-1", nav[0].CallbackData)
	assert.Equal(t, "1/3", nav[1].Text)
	assert.Equal(t, "group_page_1", nav[2].CallbackData)

	// Последняя страница: 19 - 16 = 3 кнопки (2+1 ряда) + навигация.
	last := GroupKeyboard(roster, 2)
	require.Len(t, last.Rows, 3)
	assert.Equal(t, "group_pick_g16", last.Rows[0][0].CallbackData)
	assert.Equal(t, "3/3", last.Rows[len(last.Rows)-1][1].Text)
}

func TestGroupKeyboard_ClampsPage(t *testing.T) {
	roster := testRoster(t, 19)

	below := GroupKeyboard(roster, -5)
	assert.Equal(t, "group_pick_g00", below.Rows[0][0].CallbackData)

	above := GroupKeyboard(roster, 99)
	assert.Equal(t, "group_pick_g16", above.Rows[0][0].CallbackData)
}

func TestConfirmGroupKeyboard(t *testing.T) {
	kb := ConfirmGroupKeyboard()

	require.Len(t, kb.Rows, 1)
	require.Len(t, kb.Rows[0], 2)
	assert.Equal(t, "group_confirm", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "group_cancel", kb.Rows[0][1].CallbackData)
}

func TestGroupListKeyboard(t *testing.T) {
	kb := GroupListKeyboard(testRoster(t, 6), "stats_")

	// 6 кнопок по 4 в ряд.
	require.Len(t, kb.Rows, 2)
	require.Len(t, kb.Rows[0], 4)
	require.Len(t, kb.Rows[1], 2)
	assert.Equal(t, "stats_g00", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "stats_g05", kb.Rows[1][1].CallbackData)
}

func TestMonthlyKeyboard_HasAllGroupsButton(t *testing.T) {
	kb := MonthlyKeyboard(testRoster(t, 4))

	require.Len(t, kb.Rows, 2)
	assert.Equal(t, "monthly_g00", kb.Rows[0][0].CallbackData)

	all := kb.Rows[len(kb.Rows)-1]
	require.Len(t, all, 1)
	assert.Equal(t, "monthly_all", all[0].CallbackData)
}

func TestGradeKeyboard(t *testing.T) {
	kb := GradeKeyboard(review.SubmissionID("abc"))

	require.Len(t, kb.Rows, 1)
	require.Len(t, kb.Rows[0], 5)
	assert.Equal(t, "grade_abc_1", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "grade_abc_5", kb.Rows[0][4].CallbackData)
	assert.Equal(t, "5", kb.Rows[0][4].Text)
}
