package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tutorhub/models"
)

var (
	// ErrInvalidCourseConfig is returned for a non-positive fee, an
	// unrecognized billing period or a missing course start date.
	ErrInvalidCourseConfig = errors.New("invalid course configuration")
	// ErrInvalidJoinDate is returned for a missing join date or a join
	// date before the course start date.
	ErrInvalidJoinDate = errors.New("invalid join date")
)

// Number of future cycles generated per call. This is a rolling
// look-ahead window, not a cap on the student's total obligation;
// the scheduler extends coverage on later runs.
const (
	weeklyHorizon  = 52
	monthlyHorizon = 12
	yearlyHorizon  = 5
)

// BillingService derives the billing cycles a student owes for a course.
// It is a pure computation: it only constructs payment candidates and
// never persists, updates or deletes records.
type BillingService struct{}

// NewBillingService creates a new BillingService instance
func NewBillingService() *BillingService {
	return &BillingService{}
}

// toDate normalizes a timestamp to a calendar date (midnight UTC)
func toDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of whole days from a to b.
// Both arguments must already be normalized calendar dates.
func daysBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / (24 * time.Hour))
}

// advancePeriod returns the start of the next billing cycle.
// The period must be validated by the caller; there is deliberately no
// default advancement for unrecognized values.
func advancePeriod(t time.Time, period models.CoursePeriod) time.Time {
	switch period {
	case models.CoursePeriodWeekly:
		return t.AddDate(0, 0, 7)
	case models.CoursePeriodMonthly:
		return t.AddDate(0, 1, 0)
	case models.CoursePeriodYearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// horizonFor returns the number of cycles generated per call
func horizonFor(period models.CoursePeriod) int {
	switch period {
	case models.CoursePeriodWeekly:
		return weeklyHorizon
	case models.CoursePeriodMonthly:
		return monthlyHorizon
	case models.CoursePeriodYearly:
		return yearlyHorizon
	}
	return 0
}

// CurrentCycleStart returns the start of the billing cycle containing the
// given date, aligned to the course start date. Callers that extend an
// existing schedule use this as the generation anchor so the look-ahead
// window rolls forward along cycle boundaries.
func (s *BillingService) CurrentCycleStart(course models.Course, at time.Time) (time.Time, error) {
	if !course.Period.Valid() || course.StartDate.IsZero() {
		return time.Time{}, ErrInvalidCourseConfig
	}

	cycleStart := toDate(course.StartDate)
	date := toDate(at)
	for {
		next := advancePeriod(cycleStart, course.Period)
		if next.After(date) {
			return cycleStart, nil
		}
		cycleStart = next
	}
}

// GenerateSchedule derives the set of new payment records needed to cover
// the student's obligation from joinDate through the look-ahead horizon.
//
// Cycle boundaries are aligned to the course start date: every cycle starts
// at startDate plus a whole number of periods, so students joining at
// different times share the same boundaries. The first cycle's effective
// start is clamped to the join date and its amount pro-rated by covered
// days; every later cycle charges the full fee. Cycles whose effective
// start already appears in existingPayments for the same student/course
// pair are skipped, which makes repeated calls (enrollment retries,
// transfers, horizon extension) idempotent.
//
// The result is ordered by ascending period start.
func (s *BillingService) GenerateSchedule(studentID uint, course models.Course, joinDate time.Time, existingPayments []models.Payment) ([]models.Payment, error) {
	if course.Fee.LessThanOrEqual(decimal.Zero) || !course.Period.Valid() || course.StartDate.IsZero() {
		return nil, ErrInvalidCourseConfig
	}
	if joinDate.IsZero() {
		return nil, ErrInvalidJoinDate
	}

	start := toDate(course.StartDate)
	join := toDate(joinDate)

	// Billing before the course exists is not meaningful
	if join.Before(start) {
		return nil, ErrInvalidJoinDate
	}

	// Align to the last cycle boundary at or before the join date
	cycleStart := start
	for {
		next := advancePeriod(cycleStart, course.Period)
		if next.After(join) {
			break
		}
		cycleStart = next
	}

	// Existing cycles for this student/course pair, keyed by the
	// calendar date of their period start
	covered := make(map[time.Time]struct{}, len(existingPayments))
	for _, p := range existingPayments {
		if p.StudentID == studentID && p.CourseID == course.ID {
			covered[toDate(p.PeriodStart)] = struct{}{}
		}
	}

	var payments []models.Payment
	current := cycleStart
	for i := 0; i < horizonFor(course.Period); i++ {
		periodEnd := advancePeriod(current, course.Period)

		// Only the first cycle can start before the join date
		effectiveStart := current
		if effectiveStart.Before(join) {
			effectiveStart = join
		}
		if !effectiveStart.Before(periodEnd) {
			current = periodEnd
			continue
		}

		// Pro-rate the leading partial cycle by covered days
		amount := course.Fee
		if i == 0 && join.After(current) {
			coveredDays := decimal.NewFromInt(daysBetween(join, periodEnd))
			totalDays := decimal.NewFromInt(daysBetween(current, periodEnd))
			amount = course.Fee.Mul(coveredDays).Div(totalDays).Round(0)
		}

		if _, exists := covered[effectiveStart]; !exists {
			payments = append(payments, models.Payment{
				ID:          uuid.New(),
				StudentID:   studentID,
				CourseID:    course.ID,
				PeriodStart: effectiveStart,
				PeriodEnd:   periodEnd,
				Amount:      amount,
				DueDate:     periodEnd,
				Status:      models.PaymentStatusPending,
			})
		}

		current = periodEnd
	}

	return payments, nil
}
