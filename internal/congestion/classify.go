package congestion

// Threshold maps a minimum congestion ratio to a level. Thresholds are
// evaluated high to low; the first one at or below the ratio wins.
type Threshold struct {
	MinRatio float64
	Level    Level
}

// DefaultThresholds is the classification table tuned for Lagos traffic:
// ratio >= 0.8 clear, >= 0.6 light, >= 0.4 moderate, >= 0.2 heavy,
// anything lower severe. The table is non-overlapping and covers [0, 1].
func DefaultThresholds() []Threshold {
	return []Threshold{
		{MinRatio: 0.8, Level: LevelClear},
		{MinRatio: 0.6, Level: LevelLight},
		{MinRatio: 0.4, Level: LevelModerate},
		{MinRatio: 0.2, Level: LevelHeavy},
	}
}

// Classifier converts a continuous congestion ratio into a discrete level.
// A Classifier is a pure value; the zero value uses DefaultThresholds.
type Classifier struct {
	thresholds []Threshold
}

// NewClassifier creates a Classifier. An empty threshold table selects the
// defaults. Thresholds must be strictly descending in MinRatio; config
// validation enforces this before a Classifier is constructed.
func NewClassifier(thresholds []Threshold) *Classifier {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}
	return &Classifier{thresholds: thresholds}
}

// Ratio computes current_speed / free_flow_speed. A non-positive free-flow
// speed means there is no meaningful baseline, so the ratio is defined as 1
// (treat as clear). This is policy, not an error.
func Ratio(currentSpeed, freeFlowSpeed float64) float64 {
	if freeFlowSpeed <= 0 {
		return 1
	}
	return currentSpeed / freeFlowSpeed
}

// Classify returns the level for a congestion ratio.
func (c *Classifier) Classify(ratio float64) Level {
	for _, t := range c.thresholds {
		if ratio >= t.MinRatio {
			return t.Level
		}
	}
	return LevelSevere
}
