package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsBusinessDay(t *testing.T) {
	kr := KRCalendar()
	us := USCalendar()

	tests := []struct {
		name string
		cal  HolidayCalendar
		date string
		want bool
	}{
		{"plain thursday", kr, "2025-01-02", true},
		{"saturday", kr, "2025-01-04", false},
		{"sunday", us, "2025-01-05", false},
		{"seollal", kr, "2025-01-30", false},
		{"seollal is open in US", us, "2025-01-30", true},
		{"MLK day", us, "2025-01-20", false},
		{"MLK day is open in KR", kr, "2025-01-20", true},
		{"nil calendar weekday", nil, "2025-01-20", true},
		{"nil calendar weekend", nil, "2025-01-25", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBusinessDay(tt.cal, day(tt.date)))
		})
	}
}

func TestStatic_IgnoresTimeOfDay(t *testing.T) {
	kr := KRCalendar()
	kst := time.FixedZone("KST", 9*3600)

	assert.True(t, kr.IsHoliday(time.Date(2025, 10, 9, 23, 30, 0, 0, kst)))
	assert.False(t, kr.IsHoliday(time.Date(2025, 10, 10, 0, 15, 0, 0, kst)))
}

func TestStatic_Merge(t *testing.T) {
	base, err := NewStatic(KR, "2027-01-01")
	require.NoError(t, err)

	merged, err := base.Merge("2027-02-08", "2027-01-01")
	require.NoError(t, err)

	assert.Equal(t, 1, base.Len(), "merge must not mutate the receiver")
	assert.Equal(t, 2, merged.Len())
	assert.Equal(t, KR, merged.Jurisdiction())
	assert.True(t, merged.IsHoliday(day("2027-02-08")))
}

func TestNewStatic_InvalidDate(t *testing.T) {
	_, err := NewStatic(US, "2025-13-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "US")
}

func TestBuiltInTables(t *testing.T) {
	assert.Equal(t, KR, KRCalendar().Jurisdiction())
	assert.Equal(t, US, USCalendar().Jurisdiction())
	assert.Len(t, KRTable(), KRCalendar().Len())
	assert.Len(t, USTable(), USCalendar().Len())

	// callers get a copy
	tbl := KRTable()
	tbl[0] = "1999-01-01"
	assert.Equal(t, "2025-01-01", KRTable()[0])
}

func TestDate(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	got := Date(time.Date(2025, 3, 4, 8, 59, 0, 0, kst))

	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-19")
	require.NoError(t, err)
	assert.Equal(t, time.June, d.Month())

	_, err = ParseDate("19/06/2025")
	assert.Error(t, err)
}
