package domain

// VacancyRecord represents one normalized vacancy row from the input CSV.
// Records are created once during ingestion and never mutated afterwards.
type VacancyRecord struct {
	Name        string           `json:"name"`
	AreaName    string           `json:"area_name"`
	PublishedAt string           `json:"published_at"`
	Year        int              `json:"year"`
	Salary      NormalizedSalary `json:"salary"`
	Needed      bool             `json:"needed"`
}

// NormalizedSalary holds the salary bounds of a vacancy together with the
// derived average and its conversion into the reference currency.
//
// Bounds are floored to whole units before averaging; the average itself is
// kept as a real number so the currency conversion is not truncated.
type NormalizedSalary struct {
	From      int     `json:"from"`
	To        int     `json:"to"`
	Currency  string  `json:"currency"`
	Average   float64 `json:"average"`
	Reference float64 `json:"reference"`
}
