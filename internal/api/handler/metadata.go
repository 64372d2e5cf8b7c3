package handler

import (
	"net/http"

	"github.com/jamroute/jamroute/internal/api/models"
	"github.com/jamroute/jamroute/internal/api/response"
	"github.com/jamroute/jamroute/internal/congestion"
	"github.com/jamroute/jamroute/internal/geo"
	"github.com/jamroute/jamroute/internal/pipeline"
	"github.com/jamroute/jamroute/internal/weather"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	bottlenecks []geo.Bottleneck
}

// NewMetadataHandler creates a new MetadataHandler over the static
// bottleneck table.
func NewMetadataHandler(bottlenecks []geo.Bottleneck) *MetadataHandler {
	return &MetadataHandler{bottlenecks: bottlenecks}
}

// ListBottlenecks handles GET /v1/metadata/bottlenecks.
func (h *MetadataHandler) ListBottlenecks(w http.ResponseWriter, r *http.Request) {
	list := models.BottleneckList{Items: make([]models.BottleneckItem, 0, len(h.bottlenecks))}
	for _, b := range h.bottlenecks {
		list.Items = append(list.Items, models.BottleneckItem{
			ID:  b.ID,
			Lat: b.Location.Lat,
			Lon: b.Location.Lon,
		})
	}
	response.JSON(w, r, http.StatusOK, list)
}

// GetEnums handles GET /v1/metadata/enums - get enum values used by the API.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	enums := models.Enums{
		Statuses: []string{
			string(pipeline.StatusOK),
			string(pipeline.StatusInfo),
			string(pipeline.StatusWarning),
		},
		CongestionLevels: []string{
			congestion.LevelClear.String(),
			congestion.LevelLight.String(),
			congestion.LevelModerate.String(),
			congestion.LevelHeavy.String(),
			congestion.LevelSevere.String(),
		},
		Confidence: []string{
			string(congestion.ConfidenceLow),
			string(congestion.ConfidenceMedium),
			string(congestion.ConfidenceHigh),
		},
		WeatherImpacts: []string{
			weather.ImpactNone.String(),
			weather.ImpactLight.String(),
			weather.ImpactModerate.String(),
			weather.ImpactSevere.String(),
		},
	}
	response.JSON(w, r, http.StatusOK, enums)
}
