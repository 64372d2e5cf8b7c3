package weather

// Rain intensity breakpoints in mm over one hour, following the standard
// meteorological classification. The provider's category alone cannot split
// light from heavy rain, so intensity decides within the Rain category.
const (
	heavyRainMM    = 7.6
	moderateRainMM = 2.5
)

// ImpactRule maps a condition category to a traffic impact. Rules for the
// Rain category are further refined by intensity in ImpactFor.
type ImpactRule struct {
	Condition Condition
	Impact    Impact
}

// DefaultImpactRules is the condition-to-impact table: thunderstorms are
// always severe, reduced-visibility conditions are moderate, drizzle is
// light, everything else has no expected impact.
func DefaultImpactRules() []ImpactRule {
	return []ImpactRule{
		{Condition: ConditionThunderstorm, Impact: ImpactSevere},
		{Condition: ConditionFog, Impact: ImpactModerate},
		{Condition: ConditionMist, Impact: ImpactModerate},
		{Condition: ConditionHaze, Impact: ImpactModerate},
		{Condition: ConditionDust, Impact: ImpactModerate},
		{Condition: ConditionDrizzle, Impact: ImpactLight},
	}
}

// ImpactTable resolves condition categories to traffic impacts.
type ImpactTable struct {
	rules map[Condition]Impact
}

// NewImpactTable builds an ImpactTable. Empty rules select the defaults.
func NewImpactTable(rules []ImpactRule) *ImpactTable {
	if len(rules) == 0 {
		rules = DefaultImpactRules()
	}
	m := make(map[Condition]Impact, len(rules))
	for _, r := range rules {
		m[r.Condition] = r.Impact
	}
	return &ImpactTable{rules: m}
}

// ImpactFor derives the traffic impact of a condition, using rain volume to
// grade the Rain category: heavy rain is as disruptive as a thunderstorm,
// moderate rain slows traffic noticeably, light rain slightly.
func (t *ImpactTable) ImpactFor(condition Condition, rainOneHour float64) Impact {
	if condition == ConditionRain {
		switch {
		case rainOneHour >= heavyRainMM:
			return ImpactSevere
		case rainOneHour >= moderateRainMM:
			return ImpactModerate
		default:
			return ImpactLight
		}
	}

	if impact, ok := t.rules[condition]; ok {
		return impact
	}
	return ImpactNone
}
