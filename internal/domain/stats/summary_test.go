package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTally(t *testing.T) {
	var tally Tally

	avg, ok := tally.Average()
	assert.False(t, ok)
	assert.Zero(t, avg)

	tally.Add(5)
	tally.Add(5)
	tally.Add(4)

	assert.Equal(t, 3, tally.Total)
	assert.Equal(t, 2, tally.Count(5))
	assert.Equal(t, 1, tally.Count(4))
	assert.Equal(t, 0, tally.Count(1))
	assert.Equal(t, 14, tally.Sum())

	avg, ok = tally.Average()
	require.True(t, ok)
	assert.InDelta(t, 14.0/3.0, avg, 1e-9)

	// Баллы вне 1..5 игнорируются.
	tally.Add(0)
	tally.Add(6)
	assert.Equal(t, 3, tally.Total)
	assert.Equal(t, 0, tally.Count(0))
	assert.Equal(t, 0, tally.Count(6))
}

func TestRank(t *testing.T) {
	perfect := Tally{}
	perfect.Add(5)

	busy := Tally{}
	busy.Add(5)
	busy.Add(5)

	average := Tally{}
	average.Add(3)

	students := []Standing{
		{StudentID: 1, FullName: "Zafar", Tally: average},
		{StudentID: 2, FullName: "Bekzod", Tally: perfect},
		{StudentID: 3, FullName: "Aziz", Tally: busy},
		{StudentID: 4, FullName: "Dilnoza"},
		{StudentID: 5, FullName: "Aziza", Tally: perfect},
	}

	ranked := Rank(students)

	// Средний по убыванию, при равенстве - количество работ, затем имя.
	assert.Equal(t, "Aziz", ranked[0].FullName)    // avg 5.0, 2 работы
	assert.Equal(t, "Aziza", ranked[1].FullName)   // avg 5.0, 1 работа, имя раньше
	assert.Equal(t, "Bekzod", ranked[2].FullName)  // avg 5.0, 1 работа
	assert.Equal(t, "Zafar", ranked[3].FullName)   // avg 3.0
	assert.Equal(t, "Dilnoza", ranked[4].FullName) // без оценок - в конце

	// Исходный срез не изменяется.
	assert.Equal(t, "Zafar", students[0].FullName)
}

func TestNewGroupSummary(t *testing.T) {
	a := Tally{}
	a.Add(4)
	a.Add(5)

	b := Tally{}
	b.Add(3)

	summary := NewGroupSummary("101", []Standing{
		{StudentID: 1, FullName: "Aziz", Tally: a},
		{StudentID: 2, FullName: "Bekzod", Tally: b},
		{StudentID: 3, FullName: "Dilnoza"},
	})

	assert.Equal(t, 3, summary.TotalSubmissions)
	require.NotNil(t, summary.Average)
	assert.InDelta(t, 4.0, *summary.Average, 1e-9)
	assert.Len(t, summary.Students, 3)
	assert.Equal(t, "Aziz", summary.Students[0].FullName)
}

func TestNewGroupSummary_EmptyLedger(t *testing.T) {
	summary := NewGroupSummary("101", []Standing{
		{StudentID: 1, FullName: "Aziz"},
		{StudentID: 2, FullName: "Bekzod"},
	})

	assert.Equal(t, 0, summary.TotalSubmissions)
	// Среднее не определено, а не ноль.
	assert.Nil(t, summary.Average)
	assert.Len(t, summary.Students, 2)
}
