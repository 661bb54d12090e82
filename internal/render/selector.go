package render

import "pothole-heatmap-backend/internal/model"

// Mode is the active visualization mode for a given zoom level.
type Mode int

const (
	// ModeDensity renders the aggregate density layer only.
	ModeDensity Mode = iota
	// ModeMarkers renders discrete per-report markers only.
	ModeMarkers
)

func (m Mode) String() string {
	if m == ModeMarkers {
		return "markers"
	}
	return "density"
}

// AggregateZoomThreshold is the zoom level at which the visualization
// switches from the aggregate density layer to discrete markers.
const AggregateZoomThreshold = 15

// MaxMarkers caps how many discrete markers are drawn per frame. The cap
// takes a prefix of the filtered set, not a sample, so results are stable.
const MaxMarkers = 500

// Point is one spatially renderable report.
type Point struct {
	Lat    float64
	Lng    float64
	Record model.PotholeRecord
}

// DensityParams are the aggregate layer's visual parameters. Radius and blur
// are pixel sizes; intensity is the per-point weight.
type DensityParams struct {
	Radius    int
	Blur      int
	Intensity float64
}

// densityTiers maps visible point count to layer parameters. Per-point
// visual weight shrinks as density grows, trading individual emphasis for
// overall pattern clarity.
var densityTiers = []struct {
	below  int
	params DensityParams
}{
	{below: 100, params: DensityParams{Radius: 25, Blur: 30, Intensity: 1.0}},
	{below: 500, params: DensityParams{Radius: 18, Blur: 20, Intensity: 0.7}},
	{below: 2000, params: DensityParams{Radius: 12, Blur: 15, Intensity: 0.5}},
}

// topTier applies at or above the last tier boundary.
var topTier = DensityParams{Radius: 8, Blur: 10, Intensity: 0.3}

// Plan is the complete rendering decision for one (zoom, dataset) input.
type Plan struct {
	Mode    Mode
	Markers []Point
	Density DensityParams
}

// VisiblePoints spatially filters a dataset: records lacking either
// coordinate stay in the dataset but are excluded from rendering.
func VisiblePoints(records []model.PotholeRecord) []Point {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}
		points = append(points, Point{Lat: *r.Latitude, Lng: *r.Longitude, Record: r})
	}
	return points
}

// SelectMode chooses the visualization mode for a zoom level.
func SelectMode(zoomLevel int) Mode {
	if zoomLevel >= AggregateZoomThreshold {
		return ModeMarkers
	}
	return ModeDensity
}

// DensityFor selects the aggregate layer parameters for a visible point
// count. The selection is a step function over four tiers.
func DensityFor(pointCount int) DensityParams {
	for _, tier := range densityTiers {
		if pointCount < tier.below {
			return tier.params
		}
	}
	return topTier
}

// BuildPlan computes the rendering plan for the current zoom and visible
// point set. It is a pure function of its inputs and holds no state; callers
// recompute it whenever the point set changes or the zoom crosses the
// threshold.
func BuildPlan(zoomLevel int, points []Point) Plan {
	if SelectMode(zoomLevel) == ModeMarkers {
		markers := points
		if len(markers) > MaxMarkers {
			markers = markers[:MaxMarkers]
		}
		return Plan{Mode: ModeMarkers, Markers: markers}
	}
	return Plan{Mode: ModeDensity, Density: DensityFor(len(points))}
}
