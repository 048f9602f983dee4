package pqagg

import (
	"fmt"
	"math"
)

// CalculateAdaptiveThreshold maps a committee size and a security level to
// the minimum required signature count.
//
// Levels: 1 -> 0.51 (simple majority), 2 -> 0.67 (two-thirds),
// 3 -> 0.75 (three-quarters); any other level falls back to level 2.
// The result is ceil(n * ratio) clamped to [1, n]; n == 0 yields 0.
//
// Deterministic and side-effect free: the same function decides how many
// signatures to collect at signing time and how many a proof must contain
// under a tiered policy at verification time.
func CalculateAdaptiveThreshold(n int, securityLevel uint8) int {
	if n <= 0 {
		return 0
	}

	var ratio float64
	switch securityLevel {
	case 1:
		ratio = 0.51
	case 2:
		ratio = 0.67
	case 3:
		ratio = 0.75
	default:
		ratio = 0.67
	}

	threshold := int(math.Ceil(float64(n) * ratio))
	if threshold < 1 {
		threshold = 1
	}
	if threshold > n {
		threshold = n
	}
	return threshold
}

// PolicyKind selects the acceptance rule of a ThresholdPolicy.
type PolicyKind int

const (
	// PolicyFixed accepts exactly Count signatures.
	PolicyFixed PolicyKind = iota
	// PolicyAtLeast accepts Count or more signatures.
	PolicyAtLeast
	// PolicyPercentage accepts ceil(n * Percent / 100) or more signatures.
	PolicyPercentage
	// PolicyTiered accepts CalculateAdaptiveThreshold(n, Level) or more.
	PolicyTiered
)

// ThresholdPolicy expresses an acceptance criterion for a proof's signer
// count at verification time. It carries no secret state.
type ThresholdPolicy struct {
	Kind    PolicyKind `json:"kind"`
	Count   int        `json:"count,omitempty"`   // Fixed, AtLeast
	Percent int        `json:"percent,omitempty"` // Percentage, 0-100
	Level   uint8      `json:"level,omitempty"`   // Tiered
}

// FixedPolicy requires exactly count signatures.
func FixedPolicy(count int) ThresholdPolicy {
	return ThresholdPolicy{Kind: PolicyFixed, Count: count}
}

// AtLeastPolicy requires count or more signatures.
func AtLeastPolicy(count int) ThresholdPolicy {
	return ThresholdPolicy{Kind: PolicyAtLeast, Count: count}
}

// PercentagePolicy requires percent% of the committee, rounded up.
func PercentagePolicy(percent int) ThresholdPolicy {
	return ThresholdPolicy{Kind: PolicyPercentage, Percent: percent}
}

// TieredPolicy requires the adaptive threshold for the given security level.
func TieredPolicy(level uint8) ThresholdPolicy {
	return ThresholdPolicy{Kind: PolicyTiered, Level: level}
}

// RequiredSignatures returns the minimum signer count this policy demands
// for a committee of n. For PolicyFixed the requirement is exact, not a
// minimum; use Satisfied for the acceptance decision.
func (p ThresholdPolicy) RequiredSignatures(n int) int {
	switch p.Kind {
	case PolicyFixed, PolicyAtLeast:
		return p.Count
	case PolicyPercentage:
		return (n*p.Percent + 99) / 100
	case PolicyTiered:
		return CalculateAdaptiveThreshold(n, p.Level)
	default:
		return n + 1 // Unknown kinds never accept
	}
}

// Satisfied reports whether a proof carrying t signatures from a committee
// of n meets this policy.
func (p ThresholdPolicy) Satisfied(t, n int) bool {
	if p.Kind == PolicyFixed {
		return t == p.Count
	}
	return t >= p.RequiredSignatures(n)
}

// SecurityClass classifies a (participants, threshold) configuration.
type SecurityClass string

const (
	SecurityClassLow    SecurityClass = "low"
	SecurityClassMedium SecurityClass = "medium"
	SecurityClassHigh   SecurityClass = "high"
)

// DefaultByzantineRatio is the classic 2/3 bound for Byzantine fault
// tolerance.
const DefaultByzantineRatio = 2.0 / 3.0

// ValidationResult contains the result of parameter validation
type ValidationResult struct {
	Valid                   bool          `json:"valid"`
	SecurityClass           SecurityClass `json:"security_class"`
	ByzantineFaultTolerance bool          `json:"byzantine_fault_tolerance"`
	Warnings                []string      `json:"warnings,omitempty"`
	Errors                  []string      `json:"errors,omitempty"`
	Recommendations         []string      `json:"recommendations,omitempty"`
}

// ThresholdValidator validates (participants, threshold) configurations
// before they are used for signing or accepted during rotation.
type ThresholdValidator struct {
	MinParticipants     int     `json:"min_participants"`
	MinThreshold        int     `json:"min_threshold"`
	MaxParticipants     int     `json:"max_participants"`
	ByzantineRatio      float64 `json:"byzantine_ratio"`
	RecommendedMinRatio float64 `json:"recommended_min_ratio"`
	RecommendedMaxRatio float64 `json:"recommended_max_ratio"`
}

// NewDefaultThresholdValidator creates a validator with secure default
// parameters. MaxParticipants is pinned to the signer bitmap's structural
// cap.
func NewDefaultThresholdValidator() *ThresholdValidator {
	return &ThresholdValidator{
		MinParticipants:     3,
		MinThreshold:        2,
		MaxParticipants:     MaxCommitteeSize,
		ByzantineRatio:      DefaultByzantineRatio,
		RecommendedMinRatio: 0.51,
		RecommendedMaxRatio: 0.80,
	}
}

// ValidateThresholdParameters validates a committee configuration and
// classifies its security posture.
func (tv *ThresholdValidator) ValidateThresholdParameters(participantCount, threshold int) *ValidationResult {
	result := &ValidationResult{
		Valid:         true,
		SecurityClass: SecurityClassMedium,
	}

	if threshold <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "threshold must be positive")
	}
	if participantCount <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "participant count must be positive")
	}
	if threshold > participantCount {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("threshold %d exceeds participant count %d", threshold, participantCount))
	}
	if participantCount > tv.MaxParticipants {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("participant count %d exceeds maximum %d (signer bitmap limit)",
				participantCount, tv.MaxParticipants))
	}
	if !result.Valid {
		result.SecurityClass = SecurityClassLow
		return result
	}

	if participantCount < tv.MinParticipants {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("committee of %d is below the recommended minimum of %d",
				participantCount, tv.MinParticipants))
	}
	if threshold < tv.MinThreshold {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("threshold %d is below the recommended minimum of %d", threshold, tv.MinThreshold))
	}

	ratio := float64(threshold) / float64(participantCount)
	result.ByzantineFaultTolerance = ratio >= tv.ByzantineRatio

	switch {
	case ratio >= 0.75:
		result.SecurityClass = SecurityClassHigh
	case ratio >= tv.RecommendedMinRatio:
		result.SecurityClass = SecurityClassMedium
	default:
		result.SecurityClass = SecurityClassLow
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("threshold ratio %.2f is below a simple majority", ratio))
	}

	if ratio > tv.RecommendedMaxRatio {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("ratio %.2f leaves little room for signer unavailability; consider at most %.2f",
				ratio, tv.RecommendedMaxRatio))
	}

	return result
}
