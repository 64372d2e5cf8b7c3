package models

// BottleneckList is the response of GET /v1/metadata/bottlenecks.
type BottleneckList struct {
	Items []BottleneckItem `json:"items"`
}

// BottleneckItem is one known bottleneck.
type BottleneckItem struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Enums lists the enum values used by the API.
type Enums struct {
	Statuses         []string `json:"statuses"`
	CongestionLevels []string `json:"congestion_levels"`
	Confidence       []string `json:"confidence"`
	WeatherImpacts   []string `json:"weather_impacts"`
}
