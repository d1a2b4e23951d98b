package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tutorhub/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func monthlyCourse(fee int64) models.Course {
	return models.Course{
		Model:     gorm.Model{ID: 1},
		Name:      "Algebra",
		Fee:       decimal.NewFromInt(fee),
		Period:    models.CoursePeriodMonthly,
		StartDate: date(2025, time.January, 1),
	}
}

func TestGenerateScheduleFullMonthlyCycles(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)

	payments, err := billing.GenerateSchedule(1, course, date(2025, time.January, 1), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(payments) != monthlyHorizon {
		t.Fatalf("expected %d payments, got %d", monthlyHorizon, len(payments))
	}

	for i, p := range payments {
		if !p.Amount.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("payment %d: expected amount 1000, got %s", i, p.Amount)
		}
		if p.Status != models.PaymentStatusPending {
			t.Errorf("payment %d: expected status pending, got %s", i, p.Status)
		}
		if !p.DueDate.Equal(p.PeriodEnd) {
			t.Errorf("payment %d: due date %v does not match period end %v", i, p.DueDate, p.PeriodEnd)
		}
	}

	// Cycles must be contiguous and ordered
	if !payments[0].PeriodStart.Equal(date(2025, time.January, 1)) {
		t.Errorf("expected first period start 2025-01-01, got %v", payments[0].PeriodStart)
	}
	for i := 1; i < len(payments); i++ {
		if !payments[i].PeriodStart.Equal(payments[i-1].PeriodEnd) {
			t.Errorf("payment %d: period start %v does not follow previous period end %v",
				i, payments[i].PeriodStart, payments[i-1].PeriodEnd)
		}
	}
}

func TestGenerateScheduleProRatesFirstMonthlyCycle(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)

	// Joining mid-January covers 16 of 31 days
	payments, err := billing.GenerateSchedule(1, course, date(2025, time.January, 16), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(payments) != monthlyHorizon {
		t.Fatalf("expected %d payments, got %d", monthlyHorizon, len(payments))
	}

	first := payments[0]
	if !first.PeriodStart.Equal(date(2025, time.January, 16)) {
		t.Errorf("expected first period start 2025-01-16, got %v", first.PeriodStart)
	}
	if !first.PeriodEnd.Equal(date(2025, time.February, 1)) {
		t.Errorf("expected first period end 2025-02-01, got %v", first.PeriodEnd)
	}
	if !first.Amount.Equal(decimal.NewFromInt(516)) {
		t.Errorf("expected pro-rated amount 516, got %s", first.Amount)
	}

	// Later cycles stay aligned to the course start and charge the full fee
	if !payments[1].PeriodStart.Equal(date(2025, time.February, 1)) {
		t.Errorf("expected second period start 2025-02-01, got %v", payments[1].PeriodStart)
	}
	for i := 1; i < len(payments); i++ {
		if !payments[i].Amount.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("payment %d: expected amount 1000, got %s", i, payments[i].Amount)
		}
	}
}

func TestGenerateScheduleProRatesFirstWeeklyCycle(t *testing.T) {
	billing := NewBillingService()
	course := models.Course{
		Model:     gorm.Model{ID: 2},
		Name:      "Chess club",
		Fee:       decimal.NewFromInt(70),
		Period:    models.CoursePeriodWeekly,
		StartDate: date(2025, time.January, 6),
	}

	// Joining Thursday covers 4 of 7 days
	payments, err := billing.GenerateSchedule(1, course, date(2025, time.January, 9), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(payments) != weeklyHorizon {
		t.Fatalf("expected %d payments, got %d", weeklyHorizon, len(payments))
	}
	if !payments[0].Amount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected pro-rated amount 40, got %s", payments[0].Amount)
	}
	if !payments[1].Amount.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected full amount 70, got %s", payments[1].Amount)
	}
}

func TestGenerateScheduleYearlyHorizon(t *testing.T) {
	billing := NewBillingService()
	course := models.Course{
		Model:     gorm.Model{ID: 3},
		Name:      "Mentorship",
		Fee:       decimal.NewFromInt(5000),
		Period:    models.CoursePeriodYearly,
		StartDate: date(2025, time.January, 1),
	}

	payments, err := billing.GenerateSchedule(1, course, date(2025, time.January, 1), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != yearlyHorizon {
		t.Fatalf("expected %d payments, got %d", yearlyHorizon, len(payments))
	}
	if !payments[4].PeriodStart.Equal(date(2029, time.January, 1)) {
		t.Errorf("expected last period start 2029-01-01, got %v", payments[4].PeriodStart)
	}
}

func TestGenerateScheduleJoinInLaterCycleAligns(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)

	// Joining during the second cycle anchors there, not at the course start
	payments, err := billing.GenerateSchedule(1, course, date(2025, time.February, 10), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !payments[0].PeriodStart.Equal(date(2025, time.February, 10)) {
		t.Errorf("expected first period start 2025-02-10, got %v", payments[0].PeriodStart)
	}
	if !payments[0].PeriodEnd.Equal(date(2025, time.March, 1)) {
		t.Errorf("expected first period end 2025-03-01, got %v", payments[0].PeriodEnd)
	}
	if !payments[1].PeriodStart.Equal(date(2025, time.March, 1)) {
		t.Errorf("expected second period start 2025-03-01, got %v", payments[1].PeriodStart)
	}
	// 19 of 28 days in February
	if !payments[0].Amount.Equal(decimal.NewFromInt(679)) {
		t.Errorf("expected pro-rated amount 679, got %s", payments[0].Amount)
	}
}

func TestGenerateScheduleJoinOnBoundaryNoProRation(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)

	payments, err := billing.GenerateSchedule(1, course, date(2025, time.March, 1), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payments[0].Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected full amount 1000 on a boundary join, got %s", payments[0].Amount)
	}
	if !payments[0].PeriodStart.Equal(date(2025, time.March, 1)) {
		t.Errorf("expected first period start 2025-03-01, got %v", payments[0].PeriodStart)
	}
}

func TestGenerateScheduleIsIdempotent(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)
	joinDate := date(2025, time.January, 16)

	first, err := billing.GenerateSchedule(1, course, joinDate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Feeding the result back must produce nothing new
	second, err := billing.GenerateSchedule(1, course, joinDate, first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("expected no new payments on repeat, got %d", len(second))
	}
}

func TestGenerateScheduleSkipsCoveredCycles(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)
	joinDate := date(2025, time.January, 1)

	all, err := billing.GenerateSchedule(1, course, joinDate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the first three cycles are on record
	payments, err := billing.GenerateSchedule(1, course, joinDate, all[:3])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != monthlyHorizon-3 {
		t.Fatalf("expected %d payments, got %d", monthlyHorizon-3, len(payments))
	}
	if !payments[0].PeriodStart.Equal(date(2025, time.April, 1)) {
		t.Errorf("expected first new period start 2025-04-01, got %v", payments[0].PeriodStart)
	}
}

func TestGenerateScheduleSkipsCoveredMidHorizonCycle(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)
	joinDate := date(2025, time.January, 1)

	all, err := billing.GenerateSchedule(1, course, joinDate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only June is on record; the cycles around it must still be generated
	covered := all[5]
	payments, err := billing.GenerateSchedule(1, course, joinDate, []models.Payment{covered})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(payments) != monthlyHorizon-1 {
		t.Fatalf("expected %d payments, got %d", monthlyHorizon-1, len(payments))
	}
	for _, p := range payments {
		if p.PeriodStart.Equal(covered.PeriodStart) {
			t.Errorf("covered period %v must not be regenerated", covered.PeriodStart)
		}
	}
	if !payments[4].PeriodStart.Equal(date(2025, time.May, 1)) {
		t.Errorf("expected period before the gap to start 2025-05-01, got %v", payments[4].PeriodStart)
	}
	if !payments[5].PeriodStart.Equal(date(2025, time.July, 1)) {
		t.Errorf("expected period after the gap to start 2025-07-01, got %v", payments[5].PeriodStart)
	}
}

func TestGenerateScheduleIgnoresOtherPairsRecords(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)
	joinDate := date(2025, time.January, 1)

	otherStudent, err := billing.GenerateSchedule(2, course, joinDate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Another student's records must not suppress this student's cycles
	payments, err := billing.GenerateSchedule(1, course, joinDate, otherStudent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != monthlyHorizon {
		t.Errorf("expected %d payments, got %d", monthlyHorizon, len(payments))
	}
}

func TestGenerateScheduleRejectsJoinBeforeCourseStart(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)

	_, err := billing.GenerateSchedule(1, course, date(2024, time.December, 15), nil)
	if !errors.Is(err, ErrInvalidJoinDate) {
		t.Errorf("expected ErrInvalidJoinDate, got %v", err)
	}

	_, err = billing.GenerateSchedule(1, course, time.Time{}, nil)
	if !errors.Is(err, ErrInvalidJoinDate) {
		t.Errorf("expected ErrInvalidJoinDate for zero join date, got %v", err)
	}
}

func TestGenerateScheduleRejectsInvalidCourse(t *testing.T) {
	billing := NewBillingService()
	joinDate := date(2025, time.January, 1)

	zeroFee := monthlyCourse(0)
	if _, err := billing.GenerateSchedule(1, zeroFee, joinDate, nil); !errors.Is(err, ErrInvalidCourseConfig) {
		t.Errorf("expected ErrInvalidCourseConfig for zero fee, got %v", err)
	}

	negativeFee := monthlyCourse(-100)
	if _, err := billing.GenerateSchedule(1, negativeFee, joinDate, nil); !errors.Is(err, ErrInvalidCourseConfig) {
		t.Errorf("expected ErrInvalidCourseConfig for negative fee, got %v", err)
	}

	badPeriod := monthlyCourse(1000)
	badPeriod.Period = "quarterly"
	if _, err := billing.GenerateSchedule(1, badPeriod, joinDate, nil); !errors.Is(err, ErrInvalidCourseConfig) {
		t.Errorf("expected ErrInvalidCourseConfig for unknown period, got %v", err)
	}

	noStart := monthlyCourse(1000)
	noStart.StartDate = time.Time{}
	if _, err := billing.GenerateSchedule(1, noStart, joinDate, nil); !errors.Is(err, ErrInvalidCourseConfig) {
		t.Errorf("expected ErrInvalidCourseConfig for missing start date, got %v", err)
	}
}

func TestCurrentCycleStart(t *testing.T) {
	billing := NewBillingService()
	course := monthlyCourse(1000)

	aligned, err := billing.CurrentCycleStart(course, date(2025, time.March, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !aligned.Equal(date(2025, time.March, 1)) {
		t.Errorf("expected 2025-03-01, got %v", aligned)
	}

	// On a boundary the cycle containing the date starts that day
	aligned, err = billing.CurrentCycleStart(course, date(2025, time.February, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !aligned.Equal(date(2025, time.February, 1)) {
		t.Errorf("expected 2025-02-01, got %v", aligned)
	}

	badPeriod := course
	badPeriod.Period = "daily"
	if _, err := billing.CurrentCycleStart(badPeriod, date(2025, time.March, 15)); !errors.Is(err, ErrInvalidCourseConfig) {
		t.Errorf("expected ErrInvalidCourseConfig, got %v", err)
	}
}
