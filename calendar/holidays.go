package calendar

// koreaHolidayList holds KRX non-trading days that fall on weekdays, 2025 through
// 2030. Later dates are treated as business days unless they fall on a weekend.
var koreaHolidayList = []string{
	"2025-01-01",
	"2025-01-27",
	"2025-01-28",
	"2025-01-29",
	"2025-01-30",
	"2025-03-03",
	"2025-05-05",
	"2025-05-06",
	"2025-06-03",
	"2025-06-06",
	"2025-08-15",
	"2025-10-03",
	"2025-10-06",
	"2025-10-07",
	"2025-10-08",
	"2025-10-09",
	"2025-12-25",
	"2025-12-31",
	"2026-01-01",
	"2026-02-16",
	"2026-02-17",
	"2026-02-18",
	"2026-03-02",
	"2026-05-01",
	"2026-05-05",
	"2026-05-25",
	"2026-06-03",
	"2026-08-17",
	"2026-09-24",
	"2026-09-25",
	"2026-10-05",
	"2026-10-09",
	"2026-12-25",
	"2026-12-31",
	"2027-01-01",
	"2027-02-08",
	"2027-02-09",
	"2027-03-01",
	"2027-05-05",
	"2027-05-13",
	"2027-08-16",
	"2027-09-14",
	"2027-09-15",
	"2027-09-16",
	"2027-10-04",
	"2027-10-11",
	"2027-12-27",
	"2027-12-31",
	"2028-01-26",
	"2028-01-27",
	"2028-01-28",
	"2028-03-01",
	"2028-04-12",
	"2028-05-01",
	"2028-05-02",
	"2028-05-05",
	"2028-06-06",
	"2028-08-15",
	"2028-10-02",
	"2028-10-03",
	"2028-10-04",
	"2028-10-05",
	"2028-10-09",
	"2028-12-25",
	"2028-12-29",
	"2029-01-01",
	"2029-02-12",
	"2029-02-13",
	"2029-02-14",
	"2029-03-01",
	"2029-05-01",
	"2029-05-07",
	"2029-05-21",
	"2029-06-06",
	"2029-08-15",
	"2029-09-21",
	"2029-09-24",
	"2029-10-03",
	"2029-10-09",
	"2029-12-25",
	"2029-12-31",
	"2030-01-01",
	"2030-02-04",
	"2030-02-05",
	"2030-03-01",
	"2030-05-01",
	"2030-05-06",
	"2030-05-09",
	"2030-06-03",
	"2030-06-06",
	"2030-08-15",
	"2030-09-11",
	"2030-09-12",
	"2030-09-13",
	"2030-10-03",
	"2030-10-09",
	"2030-12-25",
	"2030-12-31",
}
