// Package classify implements the complexity classifier (§4.2): a pure,
// side-effect-free regex decision table mapping a query string and tool
// name to an advisory minimum serving tier. The router combines this
// output with live availability checks before committing to a tier.
package classify

import (
	"regexp"

	"devgateway/internal/tier"
)

// Result is the classifier's output tuple (§4.2).
type Result struct {
	MinTier   tier.Tier
	Reason    string
	WriteFlag bool
}

var writeIntentPattern = regexp.MustCompile(`(?i)\b(change|edit|modify|update|fix|create|add|remove|delete|refactor|implement|write|build|make|generate|commit|push|deploy|release|rename|move|migrate|install|upgrade|downgrade)\b`)

var localModelSuitedPattern = regexp.MustCompile(`(?i)\b(translate|translation|doc comment|docstring|documentation for|commit message|explain (this|the) error|error message means|naming suggestion|suggest a name|test description|code style|lint style|format (this|the) log|line[- ]by[- ]line)\b`)

var readOnlyPattern = regexp.MustCompile(`(?i)\b(where|what|how|why|which|list|show|explain|compare|describe|summarize|overview|architecture|structure)\b`)

var shortStructuralLookupPattern = regexp.MustCompile(`(?i)^(where is|find (the )?file|what function|show me|list|get)\b`)

var reasoningPrefixPattern = regexp.MustCompile(`(?i)^(how (do|does|can|should)|why (is|does|did)|explain|what is the (best|difference)|compare|suggest|refactor|review)\b`)

// defaultLengthThreshold is the default fallback's length cutoff (§4.2
// step 6).
const defaultLengthThreshold = 300

// Classify maps query and toolName to a Result per a fixed decision order
// (first match wins). toolName is accepted for symmetry with the input
// tuple but the current decision table is driven entirely by query text.
func Classify(query, toolName string) Result {
	_ = toolName

	if writeIntentPattern.MatchString(query) {
		return Result{MinTier: tier.T4, Reason: "write-intent pattern matched", WriteFlag: true}
	}
	if localModelSuitedPattern.MatchString(query) {
		return Result{MinTier: tier.T2, Reason: "local-model-suited pattern matched"}
	}
	// Short structural lookups are checked ahead of the generic read-only
	// interrogative match: "where is X defined?" starts with "where is",
	// an anchored pattern step 4 owns, even though "where" alone would
	// also satisfy step 3's bare interrogative match.
	if shortStructuralLookupPattern.MatchString(query) {
		return Result{MinTier: tier.T1, Reason: "short structural lookup matched"}
	}
	if readOnlyPattern.MatchString(query) {
		return Result{MinTier: tier.T2, Reason: "read-only interrogative matched"}
	}
	if reasoningPrefixPattern.MatchString(query) {
		return Result{MinTier: tier.T2, Reason: "reasoning prefix matched"}
	}
	if len(query) < defaultLengthThreshold {
		return Result{MinTier: tier.T2, Reason: "default: short query"}
	}
	return Result{MinTier: tier.T4, Reason: "default: long query"}
}
