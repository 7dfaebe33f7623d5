package domain

// AreaEntry is one ranked aggregate entry for a geographic area.
type AreaEntry struct {
	Area  string  `json:"area"`
	Value float64 `json:"value"`
}

// Statistics is the read-only output of one aggregation run. It feeds the
// spreadsheet, chart and PDF sinks and is never mutated after construction.
type Statistics struct {
	Profession string `json:"profession"`

	// Years lists every year present in the unfiltered dataset, ascending.
	// All four year maps are keyed by exactly this set (zero-filled).
	Years []int `json:"years"`

	SalaryByYear       map[int]int `json:"salary_by_year"`
	CountByYear        map[int]int `json:"count_by_year"`
	SalaryByYearNeeded map[int]int `json:"salary_by_year_needed"`
	CountByYearNeeded  map[int]int `json:"count_by_year_needed"`

	// TopAreasBySalary holds at most ten areas ranked by average salary
	// descending. Areas whose vacancy share is at or below the pruning
	// threshold are absent entirely.
	TopAreasBySalary []AreaEntry `json:"top_areas_by_salary"`

	// TopAreasByShare holds at most ten areas ranked by vacancy share
	// descending. Shares are fractions rounded to four decimal places.
	TopAreasByShare []AreaEntry `json:"top_areas_by_share"`
}
