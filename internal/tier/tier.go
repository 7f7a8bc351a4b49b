// Package tier defines the gateway's five cost-ordered serving tiers
// (§2, §4.2), shared between the classifier and the router so neither
// needs to import the other.
package tier

// Tier is one of the five cost-ordered serving tiers.
type Tier int

const (
	// T0 serves from the TTL cache, sub-millisecond, free.
	T0 Tier = iota
	// T1 serves from a pre-built memory index.
	T1
	// T2 serves from a local language-model runner.
	T2
	// T3 reads the filesystem directly.
	T3
	// T4 escalates to a remote API and costs a token budget unit.
	T4
)

func (t Tier) String() string {
	switch t {
	case T0:
		return "T0"
	case T1:
		return "T1"
	case T2:
		return "T2"
	case T3:
		return "T3"
	case T4:
		return "T4"
	default:
		return "unknown"
	}
}
