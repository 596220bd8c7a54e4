package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tier determines how a passenger pays for activities
type Tier string

const (
	TierStandard Tier = "standard"
	TierGold     Tier = "gold"
	TierPremium  Tier = "premium"
)

// goldRate is the share of the list price a gold passenger pays
var goldRate = decimal.RequireFromString("0.9")

// ParseTier converts a string to a Tier, case-insensitively
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierStandard:
		return TierStandard, nil
	case TierGold:
		return TierGold, nil
	case TierPremium:
		return TierPremium, nil
	default:
		return "", ErrInvalidTier
	}
}

// IsValid checks if the tier is one of the known tiers
func (t Tier) IsValid() bool {
	switch t {
	case TierStandard, TierGold, TierPremium:
		return true
	}
	return false
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

// Charges reports whether the tier pays for activities from its balance
func (t Tier) Charges() bool {
	return t != TierPremium
}

// EffectiveCost returns what a passenger of this tier pays for an activity of the given cost
func (t Tier) EffectiveCost(cost decimal.Decimal) decimal.Decimal {
	switch t {
	case TierGold:
		return cost.Mul(goldRate)
	case TierPremium:
		return decimal.Zero
	default:
		return cost
	}
}

// SignUp applies the tier's enrollment policy to an activity and returns the outcome
// together with the balance after the attempt.
//
// Paying tiers check the balance before asking the activity for a place, so a passenger
// who cannot pay never occupies one. Premium passengers only need a free place.
func SignUp(tier Tier, balance decimal.Decimal, activity *Activity) (bool, decimal.Decimal) {
	return signUp(tier, balance, activity, nil)
}

func signUp(tier Tier, balance decimal.Decimal, activity *Activity, p *Passenger) (bool, decimal.Decimal) {
	if !tier.Charges() {
		return activity.AddPassenger(p), balance
	}

	price := tier.EffectiveCost(activity.Cost)
	if balance.LessThan(price) {
		return false, balance
	}
	if !activity.AddPassenger(p) {
		return false, balance
	}
	return true, balance.Sub(price)
}
