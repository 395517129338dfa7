package models

// MonthlyStat is the cash total for one calendar month inside the six-month
// lookback window.
type MonthlyStat struct {
	Year           int   `json:"year"`
	Month          int   `json:"month"`
	AmtOfDonations int64 `json:"amtOfDonations"`
}

// YearlyStat is the cash total for one calendar year. The report always
// carries six entries, zero-filled for years without donations.
type YearlyStat struct {
	Year           int   `json:"year"`
	AmtOfDonations int64 `json:"amtOfDonations"`
}

// CumulativeStat is a running total over the monthly buckets in chronological
// order; the series is non-decreasing.
type CumulativeStat struct {
	Year                int   `json:"year"`
	Month               int   `json:"month"`
	CumulativeThisMonth int64 `json:"cumulativeThisMonth"`
}

// DonationReport bundles the dashboard statistics. Derived on demand, never
// persisted.
type DonationReport struct {
	MonthlyStats    []MonthlyStat    `json:"monthlyStats"`
	YearlyStats     []YearlyStat     `json:"yearlyStats"`
	CumulativeStats []CumulativeStat `json:"cumulativeStats"`
}
