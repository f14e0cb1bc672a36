package enums

import "fmt"

// OfferTerm describes how a purchased offer entitles the buyer over time.
type OfferTerm string

const (
	OfferTermPerpetual    OfferTerm = "perpetual"
	OfferTermSubscription OfferTerm = "subscription"
	OfferTermOneTimeUse   OfferTerm = "one_time_use"
)

var validOfferTerms = []OfferTerm{
	OfferTermPerpetual,
	OfferTermSubscription,
	OfferTermOneTimeUse,
}

var offerTermCodes = map[OfferTerm]int{
	OfferTermPerpetual:    0,
	OfferTermSubscription: 10,
	OfferTermOneTimeUse:   20,
}

// String implements fmt.Stringer.
func (t OfferTerm) String() string {
	return string(t)
}

// Code returns the numeric wire value for the term.
func (t OfferTerm) Code() int {
	return offerTermCodes[t]
}

// IsValid reports whether the value is a known OfferTerm.
func (t OfferTerm) IsValid() bool {
	for _, candidate := range validOfferTerms {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOfferTerm converts raw input into an OfferTerm.
func ParseOfferTerm(value string) (OfferTerm, error) {
	for _, candidate := range validOfferTerms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer term %q", value)
}
