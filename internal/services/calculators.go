package services

import (
	"hash/fnv"
	"math"
	"sort"
	"time"

	"github.com/eduboost-lms/analytics-service/internal/models"
)

// Thresholds and caps for the admin dashboard aggregates.
const (
	completionThreshold = 50.0
	lowRiskThreshold    = 70.0
	mediumRiskThreshold = 50.0

	trendMonths          = 5
	maxCompletionEntries = 6
	maxSimulatedModules  = 3
	maxAttendanceEntries = 5
	maxRepeatEntries     = 5
	snapshotSize         = 10

	moduleTitleRunes = 20
)

// RiskLevel is a coarse early-warning bucket derived from average score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ===== DATA STRUCTURES =====

type TrendPoint struct {
	Month string `json:"month"`
	Avg   int    `json:"avg"`
}

// ModuleCompletion carries the completion percentage for one module.
// Simulated marks fabricated placeholder values injected for modules with no
// recorded activity, so chart consumers can tell them from measured data.
type ModuleCompletion struct {
	Module    string `json:"module"`
	Completed int    `json:"completed"`
	Simulated bool   `json:"simulated,omitempty"`
}

type AttendanceLog struct {
	Module   string `json:"module"`
	Total    int    `json:"total"`
	Attended int    `json:"attended"`
}

type RepeatStat struct {
	Module  string `json:"module"`
	Repeats int    `json:"repeats"`
}

type RiskDistribution struct {
	Low    int `json:"Low"`
	Medium int `json:"Medium"`
	High   int `json:"High"`
}

type StudentSnapshot struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Avg  int       `json:"avg"`
	Risk RiskLevel `json:"risk"`
}

// ===== PROGRESS TREND =====

// CalculateProgressTrend buckets progress records into the trailing five
// calendar months (oldest first) and averages the marks per month. Months
// without scored records report 0. Records with missing or out-of-range marks
// are skipped.
func CalculateProgressTrend(progress []models.StudentProgress, now time.Time) []TrendPoint {
	type bucket struct {
		sum   float64
		count int
	}

	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	order := make([]time.Time, 0, trendMonths)
	buckets := make(map[time.Time]*bucket, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		month := anchor.AddDate(0, -i, 0)
		order = append(order, month)
		buckets[month] = &bucket{}
	}

	for _, rec := range progress {
		if !rec.HasValidMarks() {
			continue
		}
		key := time.Date(rec.CreatedAt.Year(), rec.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[key]
		if !ok {
			continue
		}
		b.sum += *rec.Marks
		b.count++
	}

	trend := make([]TrendPoint, 0, trendMonths)
	for _, month := range order {
		b := buckets[month]
		avg := 0
		if b.count > 0 {
			avg = int(math.Round(b.sum / float64(b.count)))
		}
		trend = append(trend, TrendPoint{Month: month.Format("Jan"), Avg: avg})
	}
	return trend
}

// ===== ASSESSMENT COMPLETION =====

// CalculateAssessmentCompletion derives per-module completion rates. There is
// no authoritative module-enrollment table, so "enrolled" is the set of
// distinct students with any progress or submission for the module. A student
// counts as completed on a passing graded submission, a completed progress
// status, or marks at or above the completion threshold. At most three modules
// with zero activity receive deterministic simulated placeholder rates,
// flagged as such. Output is sorted descending by rate with stable ties and
// capped at six entries.
func CalculateAssessmentCompletion(modules []models.Module, progress []models.StudentProgress, submissions []models.Submission) []ModuleCompletion {
	titles := make(map[string]string, len(modules))
	for _, m := range modules {
		titles[m.ID] = m.Title
	}

	enrolled := make(map[string]map[string]struct{})
	completed := make(map[string]map[string]struct{})
	mark := func(set map[string]map[string]struct{}, moduleID, studentID string) {
		// Dangling module references are skipped silently.
		if _, ok := titles[moduleID]; !ok {
			return
		}
		students, ok := set[moduleID]
		if !ok {
			students = make(map[string]struct{})
			set[moduleID] = students
		}
		students[studentID] = struct{}{}
	}

	for _, rec := range progress {
		mark(enrolled, rec.ModuleID, rec.StudentID)
		if rec.Status == models.ProgressCompleted || (rec.Marks != nil && *rec.Marks >= completionThreshold) {
			mark(completed, rec.ModuleID, rec.StudentID)
		}
	}
	for _, sub := range submissions {
		mark(enrolled, sub.ModuleID, sub.StudentID)
		if sub.IsPassing(completionThreshold) {
			mark(completed, sub.ModuleID, sub.StudentID)
		}
	}

	results := make([]ModuleCompletion, 0, len(modules))
	simulated := 0
	for _, m := range modules {
		enrolledCount := len(enrolled[m.ID])
		if enrolledCount == 0 {
			if simulated >= maxSimulatedModules {
				continue
			}
			simulated++
			results = append(results, ModuleCompletion{
				Module:    truncateTitle(m.Title),
				Completed: simulatedCompletionRate(m.ID),
				Simulated: true,
			})
			continue
		}
		rate := int(math.Round(100 * float64(len(completed[m.ID])) / float64(enrolledCount)))
		results = append(results, ModuleCompletion{
			Module:    truncateTitle(m.Title),
			Completed: rate,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Completed > results[j].Completed
	})
	if len(results) > maxCompletionEntries {
		results = results[:maxCompletionEntries]
	}
	return results
}

// simulatedCompletionRate fabricates a stable placeholder rate in [40,85] from
// a hash of the module ID, so repeated requests chart the same value.
func simulatedCompletionRate(moduleID string) int {
	h := fnv.New32a()
	h.Write([]byte(moduleID))
	return int(40 + h.Sum32()%46)
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= moduleTitleRunes {
		return title
	}
	return string(runes[:moduleTitleRunes])
}

// ===== ATTENDANCE / PARTICIPATION =====

// CalculateAttendanceLogs rolls progress activity up into a participation
// proxy: total counts progress records per module for students holding at
// least one enrollment, attended counts those completed or scored above zero.
// There is no session-level attendance entity; this is the closest available
// signal. Capped at five modules in catalog order.
func CalculateAttendanceLogs(modules []models.Module, enrollments []models.Enrollment, progress []models.StudentProgress) []AttendanceLog {
	enrolledStudents := make(map[string]struct{}, len(enrollments))
	for _, e := range enrollments {
		enrolledStudents[e.StudentID] = struct{}{}
	}

	titles := make(map[string]string, len(modules))
	for _, m := range modules {
		titles[m.ID] = m.Title
	}

	type tally struct {
		total    int
		attended int
	}
	tallies := make(map[string]*tally)
	for _, rec := range progress {
		if _, ok := enrolledStudents[rec.StudentID]; !ok {
			continue
		}
		if _, ok := titles[rec.ModuleID]; !ok {
			continue
		}
		t := tallies[rec.ModuleID]
		if t == nil {
			t = &tally{}
			tallies[rec.ModuleID] = t
		}
		t.total++
		if rec.Status == models.ProgressCompleted || (rec.Marks != nil && *rec.Marks > 0) {
			t.attended++
		}
	}

	logs := make([]AttendanceLog, 0, maxAttendanceEntries)
	for _, m := range modules {
		t, ok := tallies[m.ID]
		if !ok {
			continue
		}
		logs = append(logs, AttendanceLog{
			Module:   truncateTitle(m.Title),
			Total:    t.total,
			Attended: t.attended,
		})
		if len(logs) == maxAttendanceEntries {
			break
		}
	}
	return logs
}

// ===== REPEAT ANALYSIS =====

// CalculateRepeatAnalysis counts repeated attempts: each progress record
// beyond the first for the same (student, assessment) pair adds one repeat to
// that record's module. Sorted descending, capped at five.
func CalculateRepeatAnalysis(modules []models.Module, progress []models.StudentProgress) []RepeatStat {
	titles := make(map[string]string, len(modules))
	for _, m := range modules {
		titles[m.ID] = m.Title
	}

	type attemptKey struct {
		studentID    string
		assessmentID string
	}
	attempts := make(map[attemptKey]int)
	repeats := make(map[string]int)
	for _, rec := range progress {
		if _, ok := titles[rec.ModuleID]; !ok {
			continue
		}
		key := attemptKey{rec.StudentID, rec.AssessmentID}
		attempts[key]++
		if attempts[key] > 1 {
			repeats[rec.ModuleID]++
		}
	}

	stats := make([]RepeatStat, 0, len(repeats))
	for _, m := range modules {
		count, ok := repeats[m.ID]
		if !ok {
			continue
		}
		stats = append(stats, RepeatStat{
			Module:  truncateTitle(m.Title),
			Repeats: count,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Repeats > stats[j].Repeats
	})
	if len(stats) > maxRepeatEntries {
		stats = stats[:maxRepeatEntries]
	}
	return stats
}

// ===== RISK DISTRIBUTION =====

// CalculateRiskDistribution buckets every student by the average of their
// positive marks: >=70 Low, >=50 Medium, otherwise High. A student with no
// scored progress is High risk. The three buckets always sum to the number of
// input students.
func CalculateRiskDistribution(students []models.User, progress []models.StudentProgress) RiskDistribution {
	byStudent := groupProgressByStudent(progress)

	var dist RiskDistribution
	for _, student := range students {
		avg, hasScores := studentAverage(byStudent[student.ID])
		switch classifyRisk(avg, hasScores) {
		case RiskLow:
			dist.Low++
		case RiskMedium:
			dist.Medium++
		default:
			dist.High++
		}
	}
	return dist
}

// ===== STUDENT SNAPSHOT =====

// BuildStudentSnapshots produces the per-student dashboard rows for the first
// ten students, using the same thresholds as the risk distribution.
func BuildStudentSnapshots(students []models.User, progress []models.StudentProgress) []StudentSnapshot {
	byStudent := groupProgressByStudent(progress)

	limit := len(students)
	if limit > snapshotSize {
		limit = snapshotSize
	}

	snapshots := make([]StudentSnapshot, 0, limit)
	for i := 0; i < limit; i++ {
		student := students[i]
		avg, hasScores := studentAverage(byStudent[student.ID])
		snapshots = append(snapshots, StudentSnapshot{
			ID:   student.DisplayID(),
			Name: student.FullName(),
			Avg:  int(math.Round(avg)),
			Risk: classifyRisk(avg, hasScores),
		})
	}
	return snapshots
}

// ===== SHARED HELPERS =====

func groupProgressByStudent(progress []models.StudentProgress) map[string][]models.StudentProgress {
	byStudent := make(map[string][]models.StudentProgress)
	for _, rec := range progress {
		byStudent[rec.StudentID] = append(byStudent[rec.StudentID], rec)
	}
	return byStudent
}

// studentAverage averages a student's positive marks. The second return is
// false when the student has no scored records at all.
func studentAverage(records []models.StudentProgress) (float64, bool) {
	sum := 0.0
	count := 0
	for _, rec := range records {
		if rec.Marks != nil && *rec.Marks > 0 {
			sum += *rec.Marks
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func classifyRisk(avg float64, hasScores bool) RiskLevel {
	switch {
	case !hasScores:
		return RiskHigh
	case avg >= lowRiskThreshold:
		return RiskLow
	case avg >= mediumRiskThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}
