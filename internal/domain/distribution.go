package domain

// SalaryDistribution summarizes the salaries of a set of jobs after
// conversion to a single currency. Maximum and Minimum report the extreme
// ends of the ranges (max of year_max, min of year_min); the remaining
// statistics are computed over range midpoints. All statistics are nil,
// not zero, when no salary contributed a value.
type SalaryDistribution struct {
	Maximum    *float64 `json:"maximum"`
	Minimum    *float64 `json:"minimum"`
	Quantile75 *float64 `json:"quantile75"`
	Quantile25 *float64 `json:"quantile25"`
	Median     *float64 `json:"median"`
	Mean       *float64 `json:"mean"`
	Std        *float64 `json:"std"`
	Currency   string   `json:"currency"`
}
