package models

import "testing"

func TestCoursePeriodValid(t *testing.T) {
	valid := []CoursePeriod{CoursePeriodWeekly, CoursePeriodMonthly, CoursePeriodYearly}
	for _, p := range valid {
		if !p.Valid() {
			t.Errorf("expected %s to be valid", p)
		}
	}

	invalid := []CoursePeriod{"", "daily", "quarterly", "Monthly", "WEEKLY"}
	for _, p := range invalid {
		if p.Valid() {
			t.Errorf("expected %s to be invalid", p)
		}
	}
}
