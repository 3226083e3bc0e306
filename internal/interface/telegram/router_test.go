package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/review"
)

func TestRouter_CommandDispatch(t *testing.T) {
	r := NewRouter(RouterConfig{})

	var got string
	r.RegisterCommand("stats", func(_ context.Context, cmdCtx CommandContext) error {
		got = cmdCtx.Args
		return nil
	})

	err := r.HandleCommand(context.Background(), "stats", CommandContext{Args: "203"})
	require.NoError(t, err)
	assert.Equal(t, "203", got)
}

func TestRouter_CallbackLongestPrefix(t *testing.T) {
	r := NewRouter(RouterConfig{})

	var matched string
	r.RegisterCallbackPrefix("group_", func(_ context.Context, _ CallbackContext) error {
		matched = "group_"
		return nil
	})
	r.RegisterCallbackPrefix("group_page_", func(_ context.Context, _ CallbackContext) error {
		matched = "group_page_"
		return nil
	})

	err := r.HandleCallback(context.Background(), "group_page_2", CallbackContext{Data: "group_page_2"})
	require.NoError(t, err)
	assert.Equal(t, "group_page_", matched)

	err = r.HandleCallback(context.Background(), "group_pick_101", CallbackContext{Data: "group_pick_101"})
	require.NoError(t, err)
	assert.Equal(t, "group_", matched)
}

func TestRouter_UnknownCallbackIgnored(t *testing.T) {
	r := NewRouter(RouterConfig{})

	err := r.HandleCallback(context.Background(), "bogus_data", CallbackContext{Data: "bogus_data"})
	assert.NoError(t, err)
}

func TestParseGradeCallback(t *testing.T) {
	id := "2f1c9a3e-0b7d-4c21-9f7e-8d4a5b6c7d8e"

	subID, grade, ok := parseGradeCallback("grade_" + id + "_4")
	require.True(t, ok)
	assert.Equal(t, review.SubmissionID(id), subID)
	assert.Equal(t, 4, grade)
}

func TestParseGradeCallback_Malformed(t *testing.T) {
	cases := []string{
		"grade_",
		"grade_abc",
		"grade__5",
		"grade_abc_",
		"grade_abc_x",
	}

	for _, data := range cases {
		_, _, ok := parseGradeCallback(data)
		assert.False(t, ok, "data %q", data)
	}
}
