// Package presenter formats outgoing Telegram messages and keyboards.
// All user-facing texts live here so handlers stay free of copy.
package presenter

import (
	"fmt"
	"strings"

	"github.com/maktab-hub/maktab-classroom-bot/internal/application/query"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
	"github.com/maktab-hub/maktab-classroom-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// AskName greets a new student and asks for the full name.
func AskName() string {
	return "Assalomu alaykum! 👋\n\n" +
		"Darslar botiga xush kelibsiz.\n" +
		"Ro'yxatdan o'tish uchun <b>to'liq ismingizni</b> yuboring."
}

// AskGroup asks the student to pick a group from the keyboard.
func AskGroup(name string) string {
	return fmt.Sprintf("Rahmat, <b>%s</b>!\n\nEndi guruhingizni tanlang:", name)
}

// ConfirmGroup asks to confirm the picked group. The group is immutable
// after registration, hence the extra step.
func ConfirmGroup(code student.GroupCode) string {
	return fmt.Sprintf("Siz <b>%s</b> guruhini tanladingiz.\nTasdiqlaysizmi?", code)
}

// Registered confirms registration and asks for the first topic.
func Registered(name string, code student.GroupCode) string {
	return fmt.Sprintf(
		"Ro'yxatdan o'tdingiz! ✅\n\n"+
			"Ism: <b>%s</b>\nGuruh: <b>%s</b>\n\n"+
			"Endi bugungi dars <b>mavzusini</b> yuboring.",
		name, code)
}

// WelcomeBack greets a returning student and asks for the topic.
func WelcomeBack(name string) string {
	return fmt.Sprintf(
		"Yana xush kelibsiz, <b>%s</b>! 👋\n\nBugungi dars mavzusini yuboring.", name)
}

// AwaitSubmission confirms the declared topic and asks for a video note.
func AwaitSubmission(topic string) string {
	return fmt.Sprintf(
		"Mavzu qabul qilindi: <b>%s</b>\n\n"+
			"Endi dars bo'yicha <b>davra video</b> (video note) yuboring. 🎥", topic)
}

// NoTopic reminds that a topic must be declared before submitting.
func NoTopic() string {
	return "Avval dars mavzusini yuboring, keyin video. 📝"
}

// NotRegistered asks the user to run /start first.
func NotRegistered() string {
	return "Siz hali ro'yxatdan o'tmagansiz.\n/start buyrug'ini yuboring."
}

// NoSession is shown when a button from an expired flow is pressed.
func NoSession() string {
	return "Sessiya topilmadi. /start buyrug'ini qaytadan yuboring."
}

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// SubmissionReceived tells the student the work reached the teacher.
func SubmissionReceived() string {
	return "Ishingiz qabul qilindi! ✅\n\nO'qituvchi baholagach sizga xabar beramiz."
}

// ReviewTicket formats the teacher-chat card that accompanies the
// forwarded video. The tally shown is the student's standing before
// this submission.
func ReviewTicket(name string, group student.GroupCode, topic string, tally stats.Tally) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📬 <b>Yangi ish</b>\n\n")
	fmt.Fprintf(&b, "O'quvchi: <b>%s</b>\n", name)
	fmt.Fprintf(&b, "Guruh: <b>%s</b>\n", group)
	fmt.Fprintf(&b, "Mavzu: <b>%s</b>\n", topic)
	if avg, ok := tally.Average(); ok {
		fmt.Fprintf(&b, "\nShu paytgacha: %d ta ish, o'rtacha %.2f", tally.Total, avg)
	} else {
		b.WriteString("\nBu birinchi ish.")
	}
	b.WriteString("\n\nBahoni tanlang:")
	return b.String()
}

// ReviewResolved replaces the teacher card after grading.
func ReviewResolved(name string, topic string, grade int) string {
	return fmt.Sprintf(
		"✅ <b>Baholandi</b>\n\nO'quvchi: <b>%s</b>\nMavzu: <b>%s</b>\nBaho: <b>%d/5</b>",
		name, topic, grade)
}

// GradeNotice tells the student the grade, with the fresh tally.
func GradeNotice(topic string, grade int, tally stats.Tally) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ishingiz baholandi! 📊\n\n")
	fmt.Fprintf(&b, "Mavzu: <b>%s</b>\nBaho: <b>%d/5</b>\n", topic, grade)
	if avg, ok := tally.Average(); ok {
		fmt.Fprintf(&b, "\nJami ishlar: %d\nO'rtacha baho: %.2f", tally.Total, avg)
	}
	b.WriteString("\n\nKeyingi dars uchun yangi mavzu yuborishingiz mumkin.")
	return b.String()
}

// AlreadyResolved answers a second press of the same grade button.
func AlreadyResolved() string {
	return "Bu ish allaqachon baholangan."
}

// NotReviewer answers a grade press from anyone but the teacher.
func NotReviewer() string {
	return "Baholash faqat o'qituvchi uchun."
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// StudentTally formats the student's own all-time tally.
func StudentTally(res *query.StudentTallyResult) string {
	if !res.HasGrades {
		return "Sizda hali baholangan ishlar yo'q. 📭"
	}

	var b strings.Builder
	b.WriteString("📊 <b>Sizning natijalaringiz</b>\n\n")
	fmt.Fprintf(&b, "Jami ishlar: <b>%d</b>\n", res.Total)
	fmt.Fprintf(&b, "O'rtacha baho: <b>%.2f</b>\n\n", res.Average)
	for i := 4; i >= 0; i-- {
		if res.Counts[i] > 0 {
			fmt.Fprintf(&b, "%d: %s (%d)\n", i+1, strings.Repeat("▪️", res.Counts[i]), res.Counts[i])
		}
	}
	return b.String()
}

// GroupSummary formats a group's ranked standings.
func GroupSummary(summary *stats.GroupSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s guruhi</b>\n\n", summary.Group)

	if summary.Average == nil {
		b.WriteString("Guruhda hali baholangan ishlar yo'q.")
		return b.String()
	}

	fmt.Fprintf(&b, "Jami ishlar: <b>%d</b>\n", summary.TotalSubmissions)
	fmt.Fprintf(&b, "Guruh o'rtachasi: <b>%.2f</b>\n\n", *summary.Average)
	writeStandings(&b, summary.Students)
	return b.String()
}

// MonthlySummary formats the current month's digest.
func MonthlySummary(res *query.MonthlySummaryResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗓 <b>%s</b>\n\n", timeutil.MonthTitle(res.Until))

	if res.Empty {
		b.WriteString("Bu oyda hali baholangan ishlar yo'q.")
		return b.String()
	}

	if res.Group != "" {
		fmt.Fprintf(&b, "Guruh: <b>%s</b>\n\n", res.Group)
		writeStandings(&b, res.Students)
		return b.String()
	}

	for _, row := range res.Groups {
		fmt.Fprintf(&b, "<b>%s</b>: %d o'quvchi, %d ish, o'rtacha %.2f\n",
			row.Group, row.ActiveStudents, row.Submissions, row.Average)
	}
	return b.String()
}

// writeStandings renders ranked student rows with medal markers.
func writeStandings(b *strings.Builder, standings []stats.Standing) {
	medals := []string{"🥇", "🥈", "🥉"}
	for i, st := range standings {
		marker := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			marker = medals[i]
		}
		if avg, ok := st.Tally.Average(); ok {
			fmt.Fprintf(b, "%s %s — %.2f (%d ish)\n", marker, st.FullName, avg, st.Tally.Total)
		} else {
			fmt.Fprintf(b, "%s %s — baho yo'q\n", marker, st.FullName)
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVICE MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// Help lists the student commands; the teacher gets extra lines.
func Help(isTeacher bool) string {
	var b strings.Builder
	b.WriteString("ℹ️ <b>Buyruqlar</b>\n\n")
	b.WriteString("/start — ro'yxatdan o'tish yoki yangi mavzu\n")
	b.WriteString("/stats — sizning natijalaringiz\n")
	b.WriteString("/help — yordam\n")
	if isTeacher {
		b.WriteString("\n<b>O'qituvchi uchun:</b>\n")
		b.WriteString("/group &lt;kod&gt; — guruh natijalari\n")
		b.WriteString("/monthly [kod] — oylik hisobot\n")
	}
	return b.String()
}

// UnknownCommand lists the available commands.
func UnknownCommand() string {
	return "Noma'lum buyruq. 🤔\n\n/help — mavjud buyruqlar ro'yxati."
}

// InternalError is the generic failure text.
func InternalError() string {
	return "Xatolik yuz berdi. 😔 Birozdan keyin qayta urinib ko'ring."
}

// TeacherOnly answers teacher commands from students.
func TeacherOnly() string {
	return "Bu buyruq faqat o'qituvchi uchun."
}

// GroupUsage explains the /group argument.
func GroupUsage() string {
	return "Guruh kodini ko'rsating, masalan: /group 101"
}
