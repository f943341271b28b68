package forecasting

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sajari/regression"
	"gonum.org/v1/gonum/stat"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
)

const (
	// MinHistory is the hard minimum number of daily records required to fit
	MinHistory = 14

	// MinHorizon and MaxHorizon bound the requested forecast horizon in days
	MinHorizon = 1
	MaxHorizon = 30

	// seasonLength is the weekly cycle observed in hospital admissions
	seasonLength = 7

	// z95 is the two-sided 95% normal quantile used for interval width
	z95 = 1.96
)

// Observation is one day of occupied-bed history
type Observation struct {
	Date         time.Time
	OccupiedBeds float64
}

// Model fits a trend-plus-weekly-seasonality decomposition over daily
// occupied-bed counts. It is retrained from scratch on every Forecast call,
// holds no state, and is safe for concurrent use.
type Model struct{}

// NewModel creates a forecast model
func NewModel() *Model {
	return &Model{}
}

// Forecast produces one ForecastPoint per day from the day after the last
// observation through horizonDays ahead. The three occupancy fields are
// clamped to be non-negative but never clamped to capacity: a prediction
// above total beds is an over-demand signal the caller must surface.
func (m *Model) Forecast(history []Observation, horizonDays int) ([]entities.ForecastPoint, *entities.ModelInfo, error) {
	if horizonDays < MinHorizon || horizonDays > MaxHorizon {
		return nil, nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizonDays)
	}
	if len(history) < MinHistory {
		return nil, nil, fmt.Errorf("%w: have %d", ErrInsufficientHistory, len(history))
	}

	series := buildDailySeries(history)
	n := len(series)

	info := &entities.ModelInfo{
		Method:          "trend+weekly-seasonality",
		TrainingSamples: len(history),
		TrainingStart:   series[0].Date,
		TrainingEnd:     series[n-1].Date,
	}

	intercept, slope, ok := fitTrend(series)
	if !ok {
		points, err := m.flatFallback(series, horizonDays)
		if err != nil {
			return nil, nil, err
		}
		info.Method = "flat-fallback"
		info.Fallback = true
		return points, info, nil
	}

	// Weekly seasonal component: per-weekday mean of detrended residuals.
	seasonal := seasonalIndices(series, intercept, slope)

	// Residual spread after removing trend and seasonality drives the
	// interval width.
	residuals := make([]float64, n)
	for i, obs := range series {
		fitted := intercept + slope*float64(i) + seasonal[obs.Date.Weekday()]
		residuals[i] = obs.OccupiedBeds - fitted
	}
	sigma := stat.StdDev(residuals, nil)
	if math.IsNaN(sigma) || sigma <= 0 {
		// Degenerate (e.g. perfectly periodic) series still get a usable
		// interval proportional to the series mean.
		sigma = math.Max(1, 0.05*stat.Mean(occupancies(series), nil))
	}

	lastDate := series[n-1].Date
	points := make([]entities.ForecastPoint, 0, horizonDays)
	for h := 1; h <= horizonDays; h++ {
		date := lastDate.AddDate(0, 0, h)
		yhat := intercept + slope*float64(n-1+h) + seasonal[date.Weekday()]
		if math.IsNaN(yhat) || math.IsInf(yhat, 0) {
			points, err := m.flatFallback(series, horizonDays)
			if err != nil {
				return nil, nil, err
			}
			info.Method = "flat-fallback"
			info.Fallback = true
			return points, info, nil
		}

		// Uncertainty widens with lead time.
		width := z95 * sigma * math.Sqrt(1+float64(h)/seasonLength)
		points = append(points, clampPoint(date, yhat, yhat-width, yhat+width))
	}

	return points, info, nil
}

// flatFallback projects the last observed value forward with widened bounds.
// Used when the decomposition cannot be fit (constant or degenerate series)
// so a numerical failure never propagates raw to the caller.
func (m *Model) flatFallback(series []Observation, horizonDays int) ([]entities.ForecastPoint, error) {
	n := len(series)
	if n == 0 {
		return nil, ErrModelFit
	}

	last := series[n-1].OccupiedBeds
	base := math.Max(1, 0.1*last)
	lastDate := series[n-1].Date

	points := make([]entities.ForecastPoint, 0, horizonDays)
	for h := 1; h <= horizonDays; h++ {
		width := z95 * base * math.Sqrt(1+float64(h)/seasonLength)
		points = append(points, clampPoint(lastDate.AddDate(0, 0, h), last, last-width, last+width))
	}
	return points, nil
}

// buildDailySeries sorts the history, deduplicates dates (last write wins,
// matching the record store's overwrite semantics) and fills calendar gaps
// by linear interpolation so the weekly decomposition sees a contiguous grid.
func buildDailySeries(history []Observation) []Observation {
	sorted := make([]Observation, len(history))
	for i, obs := range history {
		sorted[i] = Observation{Date: midnightUTC(obs.Date), OccupiedBeds: obs.OccupiedBeds}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	deduped := sorted[:0]
	for _, obs := range sorted {
		if len(deduped) > 0 && deduped[len(deduped)-1].Date.Equal(obs.Date) {
			deduped[len(deduped)-1] = obs
			continue
		}
		deduped = append(deduped, obs)
	}

	series := make([]Observation, 0, len(deduped))
	for i, obs := range deduped {
		if i > 0 {
			prev := series[len(series)-1]
			gap := int(obs.Date.Sub(prev.Date).Hours() / 24)
			for d := 1; d < gap; d++ {
				frac := float64(d) / float64(gap)
				series = append(series, Observation{
					Date:         prev.Date.AddDate(0, 0, d),
					OccupiedBeds: prev.OccupiedBeds + frac*(obs.OccupiedBeds-prev.OccupiedBeds),
				})
			}
		}
		series = append(series, obs)
	}
	return series
}

// fitTrend runs an ordinary least squares fit of occupancy against day index.
// ok is false when the fit fails or yields non-finite coefficients.
func fitTrend(series []Observation) (intercept, slope float64, ok bool) {
	r := new(regression.Regression)
	r.SetObserved("occupied beds")
	r.SetVar(0, "day index")
	for i, obs := range series {
		r.Train(regression.DataPoint(obs.OccupiedBeds, []float64{float64(i)}))
	}
	if err := r.Run(); err != nil {
		return 0, 0, false
	}

	intercept = r.Coeff(0)
	slope = r.Coeff(1)
	if math.IsNaN(intercept) || math.IsNaN(slope) || math.IsInf(intercept, 0) || math.IsInf(slope, 0) {
		return 0, 0, false
	}
	return intercept, slope, true
}

// seasonalIndices returns the mean detrended residual per weekday
func seasonalIndices(series []Observation, intercept, slope float64) map[time.Weekday]float64 {
	sums := make(map[time.Weekday]float64, seasonLength)
	counts := make(map[time.Weekday]int, seasonLength)
	for i, obs := range series {
		residual := obs.OccupiedBeds - (intercept + slope*float64(i))
		wd := obs.Date.Weekday()
		sums[wd] += residual
		counts[wd]++
	}

	indices := make(map[time.Weekday]float64, seasonLength)
	for wd, sum := range sums {
		indices[wd] = sum / float64(counts[wd])
	}
	return indices
}

func occupancies(series []Observation) []float64 {
	values := make([]float64, len(series))
	for i, obs := range series {
		values[i] = obs.OccupiedBeds
	}
	return values
}

// clampPoint floors the forecast fields at zero while keeping
// lower <= predicted <= upper.
func clampPoint(date time.Time, yhat, lower, upper float64) entities.ForecastPoint {
	return entities.ForecastPoint{
		Date:               date,
		PredictedOccupancy: math.Max(0, yhat),
		LowerBound:         math.Max(0, lower),
		UpperBound:         math.Max(0, upper),
	}
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
