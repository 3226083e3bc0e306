package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudent(t *testing.T) {
	roster := NewRoster([]GroupCode{"101", "203"})

	tests := []struct {
		name    string
		params  NewStudentParams
		wantErr error
	}{
		{
			name: "valid student",
			params: NewStudentParams{
				TelegramID: 42,
				FullName:   "Aziz Aliyev",
				Username:   "aziz",
				Group:      "101",
			},
		},
		{
			name: "name is trimmed",
			params: NewStudentParams{
				TelegramID: 42,
				FullName:   "  Aziz Aliyev  ",
				Group:      "101",
			},
		},
		{
			name: "zero telegram id",
			params: NewStudentParams{
				TelegramID: 0,
				FullName:   "Aziz Aliyev",
				Group:      "101",
			},
			wantErr: ErrInvalidTelegramID,
		},
		{
			name: "negative telegram id",
			params: NewStudentParams{
				TelegramID: -5,
				FullName:   "Aziz Aliyev",
				Group:      "101",
			},
			wantErr: ErrInvalidTelegramID,
		},
		{
			name: "blank name",
			params: NewStudentParams{
				TelegramID: 42,
				FullName:   "   ",
				Group:      "101",
			},
			wantErr: ErrInvalidFullName,
		},
		{
			name: "group outside roster",
			params: NewStudentParams{
				TelegramID: 42,
				FullName:   "Aziz Aliyev",
				Group:      "999",
			},
			wantErr: ErrGroupNotInRoster,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStudent(tt.params, roster)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Aziz Aliyev", s.FullName)
			assert.Equal(t, GroupCode("101"), s.Group)
			assert.Nil(t, s.CurrentTopic)
			assert.False(t, s.CreatedAt.IsZero())
		})
	}
}

func TestStudent_DeclareAndClearTopic(t *testing.T) {
	s := &Student{TelegramID: 42, FullName: "Aziz Aliyev", Group: "101"}

	assert.False(t, s.HasTopic())
	assert.Equal(t, "", s.Topic())

	err := s.DeclareTopic("  Unit 3  ")
	require.NoError(t, err)
	assert.True(t, s.HasTopic())
	assert.Equal(t, "Unit 3", s.Topic())

	// Повторное объявление заменяет тему.
	require.NoError(t, s.DeclareTopic("Unit 4"))
	assert.Equal(t, "Unit 4", s.Topic())

	s.ClearTopic()
	assert.False(t, s.HasTopic())
	assert.Nil(t, s.CurrentTopic)
}

func TestStudent_DeclareTopic_Empty(t *testing.T) {
	s := &Student{TelegramID: 42}

	err := s.DeclareTopic("   ")
	assert.ErrorIs(t, err, ErrEmptyTopic)
	assert.False(t, s.HasTopic())
}

func TestStudent_Clone(t *testing.T) {
	topic := "Unit 3"
	s := &Student{TelegramID: 42, FullName: "Aziz Aliyev", Group: "101", CurrentTopic: &topic}

	clone := s.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, s.FullName, clone.FullName)

	// Изменение копии не трогает оригинал.
	*clone.CurrentTopic = "Unit 5"
	assert.Equal(t, "Unit 3", *s.CurrentTopic)

	var nilStudent *Student
	assert.Nil(t, nilStudent.Clone())
}

func TestRoster(t *testing.T) {
	r := DefaultRoster()

	assert.Equal(t, 19, r.Len())
	assert.True(t, r.Contains("101"))
	assert.True(t, r.Contains("215"))
	assert.True(t, r.Contains("246"))
	assert.False(t, r.Contains("999"))

	codes := r.Codes()
	assert.Equal(t, GroupCode("101"), codes[0])
	assert.Equal(t, GroupCode("246"), codes[len(codes)-1])

	// Дубликаты не добавляются.
	dup := NewRoster([]GroupCode{"101", "101", "102"})
	assert.Equal(t, 2, dup.Len())
}
