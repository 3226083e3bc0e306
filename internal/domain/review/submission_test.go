package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrade(t *testing.T) {
	tests := []struct {
		value   int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{3, false},
		{5, false},
		{6, true},
		{-1, true},
	}

	for _, tt := range tests {
		g, err := NewGrade(tt.value)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrGradeOutOfRange, "grade %d", tt.value)
			continue
		}
		require.NoError(t, err, "grade %d", tt.value)
		assert.Equal(t, tt.value, g.Int())
	}
}

func TestSubmissionID(t *testing.T) {
	assert.False(t, SubmissionID("").IsValid())
	assert.True(t, SubmissionID("a1b2").IsValid())
	assert.Equal(t, "a1b2", SubmissionID("a1b2").String())
}
