package calendar

// Built-in holiday tables. Coverage is limited to the listed years; later
// years are supplied through configuration and merged with Merge.

var krHolidays = []string{
	// 2025
	"2025-01-01", // New Year's Day
	"2025-01-29", "2025-01-30", "2025-01-31", // Seollal
	"2025-03-01", // Independence Movement Day
	"2025-04-10", // parliamentary election
	"2025-05-05", // Children's Day
	"2025-05-15", // Buddha's Birthday
	"2025-06-06", // Memorial Day
	"2025-08-15", // Liberation Day
	"2025-09-16", "2025-09-17", "2025-09-18", // Chuseok
	"2025-10-03", // National Foundation Day
	"2025-10-09", // Hangul Day
	"2025-12-25",

	// 2026
	"2026-01-01",
	"2026-02-16", "2026-02-17", "2026-02-18", // Seollal
	"2026-03-02", // Independence Movement Day (substitute)
	"2026-05-05",
	"2026-05-25", // Buddha's Birthday (substitute)
	"2026-06-03", // local elections
	"2026-08-17", // Liberation Day (substitute)
	"2026-09-24", "2026-09-25", "2026-09-26", // Chuseok
	"2026-10-05", // National Foundation Day (substitute)
	"2026-10-09",
	"2026-12-25",
}

var usHolidays = []string{
	// 2025
	"2025-01-01",
	"2025-01-20", // Martin Luther King Jr. Day
	"2025-02-17", // Presidents' Day
	"2025-05-26", // Memorial Day
	"2025-06-19", // Juneteenth
	"2025-07-04",
	"2025-09-01", // Labor Day
	"2025-10-13", // Columbus Day
	"2025-11-11", // Veterans Day
	"2025-11-27", // Thanksgiving
	"2025-12-25",

	// 2026
	"2026-01-01",
	"2026-01-19",
	"2026-02-16",
	"2026-05-25",
	"2026-06-19",
	"2026-07-03", // Independence Day (observed)
	"2026-09-07",
	"2026-10-12",
	"2026-11-11",
	"2026-11-26",
	"2026-12-25",
}

// KRTable returns the built-in Korean holiday dates.
func KRTable() []string {
	return append([]string(nil), krHolidays...)
}

// USTable returns the built-in US holiday dates.
func USTable() []string {
	return append([]string(nil), usHolidays...)
}

// KRCalendar returns the built-in Korean calendar.
func KRCalendar() *Static {
	c, err := NewStatic(KR, krHolidays...)
	if err != nil {
		panic("calendar: " + err.Error())
	}
	return c
}

// USCalendar returns the built-in US calendar.
func USCalendar() *Static {
	c, err := NewStatic(US, usHolidays...)
	if err != nil {
		panic("calendar: " + err.Error())
	}
	return c
}
