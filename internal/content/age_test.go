package content

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeAt_RoundsUpMonths(t *testing.T) {
	tests := []struct {
		name       string
		birth      time.Time
		today      time.Time
		wantMonths int
		wantWeeks  int
	}{
		{"birth day", date(2024, 1, 15), date(2024, 1, 15), 0, 0},
		{"one day old", date(2024, 1, 15), date(2024, 1, 16), 1, 1},
		{"exact anniversary", date(2024, 1, 15), date(2024, 2, 15), 1, 5},
		{"one day past anniversary", date(2024, 1, 15), date(2024, 2, 16), 2, 5},
		{"day before anniversary", date(2024, 1, 15), date(2024, 2, 14), 1, 5},
		{"exactly eight weeks", date(2024, 1, 1), date(2024, 2, 26), 2, 8},
		{"month end clamps", date(2023, 1, 31), date(2023, 2, 28), 1, 4},
		{"across year", date(2023, 11, 20), date(2024, 2, 20), 3, 14},
		{"today before birth", date(2024, 3, 1), date(2024, 2, 1), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AgeAt(tt.birth, tt.today)
			if got.Months != tt.wantMonths {
				t.Errorf("Months = %d, want %d", got.Months, tt.wantMonths)
			}
			if got.Weeks != tt.wantWeeks {
				t.Errorf("Weeks = %d, want %d", got.Weeks, tt.wantWeeks)
			}
		})
	}
}

func TestAgeAt_IgnoresTimeOfDay(t *testing.T) {
	birth := time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)
	today := time.Date(2024, 2, 15, 0, 1, 0, 0, time.UTC)
	if got := AgeAt(birth, today); got.Months != 1 {
		t.Errorf("Months = %d, want 1", got.Months)
	}
}

func TestMonthsOnly(t *testing.T) {
	a := MonthsOnly(7)
	if a.HasWeeks() {
		t.Error("MonthsOnly age should not have weeks")
	}
	if a.approxWeeks() != 30 {
		t.Errorf("approxWeeks = %d, want 30", a.approxWeeks())
	}
}
