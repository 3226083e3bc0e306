// Package stats содержит агрегаты статистики над журналом оценок.
// Все производные значения вычисляются из нормализованных записей
// журнала; сами агрегаты нигде не хранятся.
package stats

import (
	"context"
	"sort"
	"time"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// TALLY
// ══════════════════════════════════════════════════════════════════════════════

// Tally - сводка оценок одного ученика: общее количество и
// распределение по баллам 1-5 (всегда заполнено нулями).
type Tally struct {
	// Total - общее количество оценённых работ.
	Total int

	// Counts - количество работ на каждый балл; индекс 0 соответствует
	// баллу 1.
	Counts [5]int
}

// Count возвращает количество работ с указанным баллом.
func (t Tally) Count(grade int) int {
	if grade < 1 || grade > 5 {
		return 0
	}
	return t.Counts[grade-1]
}

// Add учитывает ещё одну оценку.
func (t *Tally) Add(grade int) {
	if grade < 1 || grade > 5 {
		return
	}
	t.Counts[grade-1]++
	t.Total++
}

// Sum возвращает сумму всех баллов.
func (t Tally) Sum() int {
	sum := 0
	for i, n := range t.Counts {
		sum += (i + 1) * n
	}
	return sum
}

// Average возвращает средний балл и признак его определённости.
// При отсутствии оценок среднее не определено (не ноль).
func (t Tally) Average() (float64, bool) {
	if t.Total == 0 {
		return 0, false
	}
	return float64(t.Sum()) / float64(t.Total), true
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUP SUMMARY
// ══════════════════════════════════════════════════════════════════════════════

// Standing - позиция одного ученика в сводке группы.
type Standing struct {
	StudentID student.TelegramID
	FullName  string
	Tally     Tally
}

// Average возвращает средний балл ученика (0 при отсутствии оценок,
// такие ученики естественно оказываются в конце рейтинга).
func (s Standing) Average() float64 {
	avg, _ := s.Tally.Average()
	return avg
}

// GroupSummary - сводка по группе: все ученики группы (включая тех,
// у кого нет ни одной оценки), суммарное количество работ и средний
// балл группы.
type GroupSummary struct {
	Group    student.GroupCode
	Students []Standing

	// TotalSubmissions - количество оценённых работ по всей группе.
	TotalSubmissions int

	// Average - средний балл группы; nil, когда оценок нет вовсе.
	Average *float64
}

// NewGroupSummary собирает сводку из позиций учеников и ранжирует их.
func NewGroupSummary(group student.GroupCode, students []Standing) GroupSummary {
	summary := GroupSummary{
		Group:    group,
		Students: Rank(students),
	}

	sum, total := 0, 0
	for _, st := range students {
		sum += st.Tally.Sum()
		total += st.Tally.Total
	}
	summary.TotalSubmissions = total
	if total > 0 {
		avg := float64(sum) / float64(total)
		summary.Average = &avg
	}
	return summary
}

// Rank ранжирует учеников: средний балл по убыванию, затем количество
// работ по убыванию, затем имя по возрастанию.
func Rank(students []Standing) []Standing {
	ranked := make([]Standing, len(students))
	copy(ranked, students)

	sort.SliceStable(ranked, func(i, j int) bool {
		ai, aj := ranked[i].Average(), ranked[j].Average()
		if ai != aj {
			return ai > aj
		}
		if ranked[i].Tally.Total != ranked[j].Tally.Total {
			return ranked[i].Tally.Total > ranked[j].Tally.Total
		}
		return ranked[i].FullName < ranked[j].FullName
	})
	return ranked
}

// ══════════════════════════════════════════════════════════════════════════════
// MONTHLY DIGEST
// ══════════════════════════════════════════════════════════════════════════════

// GroupMonthlyRow - строка месячного дайджеста по одной группе.
type GroupMonthlyRow struct {
	Group student.GroupCode

	// ActiveStudents - ученики с хотя бы одной оценкой в окне.
	ActiveStudents int

	// Submissions - количество оценённых работ в окне.
	Submissions int

	// Average - средний балл группы в окне.
	Average float64
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER (read side)
// ══════════════════════════════════════════════════════════════════════════════

// Ledger определяет запросы чтения над журналом оценок.
// Реализация - infrastructure/persistence/postgres.
type Ledger interface {
	// TallyForUser возвращает сводку одного ученика за всё время.
	TallyForUser(ctx context.Context, id student.TelegramID) (Tally, error)

	// GroupStandings возвращает позиции всех учеников группы за всё
	// время, включая учеников без оценок.
	GroupStandings(ctx context.Context, group student.GroupCode) ([]Standing, error)

	// MonthlyStandings возвращает позиции учеников группы в окне
	// [since, until]. Ученики без оценок в окне не включаются.
	MonthlyStandings(ctx context.Context, group student.GroupCode, since, until time.Time) ([]Standing, error)

	// MonthlyByGroup возвращает строку дайджеста на каждую группу,
	// имеющую оценки в окне [since, until].
	MonthlyByGroup(ctx context.Context, since, until time.Time) ([]GroupMonthlyRow, error)
}
