package types

// TermDetails carries the cadence parameters for subscription offers.
type TermDetails struct {
	// PeriodMonths is the billing/entitlement period for subscription terms.
	PeriodMonths int `json:"period_months,omitempty"`
	// TrialDays delays the start of the first paid period.
	TrialDays int `json:"trial_days,omitempty"`
}
