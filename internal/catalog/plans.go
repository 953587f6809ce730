package catalog

// PlanLimits maps a plan name to its catalog ceiling. The table is
// configuration, not code: unknown plan names fall back to the most
// restrictive tier so a mistyped plan can never unlock a bigger catalog.
type PlanLimits map[string]int

// DefaultPlanLimits mirrors the platform's stock tiers.
func DefaultPlanLimits() PlanLimits {
	return PlanLimits{
		"Free":    5,
		"Premium": 20,
	}
}

// LimitFor returns the ceiling for planName, or the smallest configured
// ceiling when the plan is unknown.
func (p PlanLimits) LimitFor(planName string) int {
	if limit, ok := p[planName]; ok {
		return limit
	}
	min := 0
	for _, limit := range p {
		if min == 0 || limit < min {
			min = limit
		}
	}
	return min
}
