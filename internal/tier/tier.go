package tier

// Balance thresholds separating the service tiers. A balance sitting exactly
// on a threshold belongs to the higher tier.
const (
	GoldThreshold     = 10000.0
	PlatinumThreshold = 20000.0
)

// Tier is a customer's service level. It is always derived from the current
// balance and never stored, so it cannot drift.
type Tier int

const (
	Silver Tier = iota
	Gold
	Platinum
)

// ForBalance maps a balance to its tier.
func ForBalance(balance float64) Tier {
	switch {
	case balance >= PlatinumThreshold:
		return Platinum
	case balance >= GoldThreshold:
		return Gold
	default:
		return Silver
	}
}

// onlineFees is the single source of truth for per-tier purchase fees.
// Callers must go through Fee rather than hardcoding these.
var onlineFees = map[Tier]float64{
	Silver:   25.0,
	Gold:     10.0,
	Platinum: 0.0,
}

// Fee returns the flat fee charged on top of an online purchase at this tier.
func (t Tier) Fee() float64 {
	return onlineFees[t]
}

func (t Tier) String() string {
	switch t {
	case Platinum:
		return "Platinum"
	case Gold:
		return "Gold"
	default:
		return "Silver"
	}
}
