package forecasting_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/carecapacity/internal/forecasting"
)

func day(offset int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// history generates n daily observations with a linear trend and a weekly dip
func history(n int, base, trend, weeklyAmp float64) []forecasting.Observation {
	obs := make([]forecasting.Observation, n)
	for i := 0; i < n; i++ {
		d := day(i)
		seasonal := 0.0
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			seasonal = -weeklyAmp
		}
		obs[i] = forecasting.Observation{
			Date:         d,
			OccupiedBeds: base + trend*float64(i) + seasonal,
		}
	}
	return obs
}

func TestModel_Forecast_HorizonValidation(t *testing.T) {
	model := forecasting.NewModel()
	obs := history(30, 100, 0.5, 10)

	for _, horizon := range []int{0, -1, 31, 100} {
		_, _, err := model.Forecast(obs, horizon)
		assert.ErrorIs(t, err, forecasting.ErrInvalidHorizon, "horizon %d", horizon)
	}

	for _, horizon := range []int{1, 30} {
		points, _, err := model.Forecast(obs, horizon)
		require.NoError(t, err, "horizon %d", horizon)
		assert.Len(t, points, horizon)
	}
}

func TestModel_Forecast_MinimumHistory(t *testing.T) {
	model := forecasting.NewModel()

	_, _, err := model.Forecast(history(13, 100, 0, 5), 7)
	assert.ErrorIs(t, err, forecasting.ErrInsufficientHistory)

	points, info, err := model.Forecast(history(14, 100, 0, 5), 7)
	require.NoError(t, err)
	assert.Len(t, points, 7)
	assert.Equal(t, 14, info.TrainingSamples)
}

func TestModel_Forecast_BoundsInvariants(t *testing.T) {
	model := forecasting.NewModel()
	points, _, err := model.Forecast(history(60, 80, 0.8, 12), 30)
	require.NoError(t, err)

	for i, p := range points {
		assert.GreaterOrEqual(t, p.PredictedOccupancy, 0.0, "point %d", i)
		assert.GreaterOrEqual(t, p.LowerBound, 0.0, "point %d", i)
		assert.GreaterOrEqual(t, p.UpperBound, 0.0, "point %d", i)
		assert.LessOrEqual(t, p.LowerBound, p.PredictedOccupancy, "point %d", i)
		assert.LessOrEqual(t, p.PredictedOccupancy, p.UpperBound, "point %d", i)
	}
}

func TestModel_Forecast_DatesFollowHistory(t *testing.T) {
	model := forecasting.NewModel()
	obs := history(21, 50, 0, 5)

	points, _, err := model.Forecast(obs, 5)
	require.NoError(t, err)

	last := obs[len(obs)-1].Date
	for i, p := range points {
		assert.Equal(t, last.AddDate(0, 0, i+1), p.Date)
	}
}

func TestModel_Forecast_Deterministic(t *testing.T) {
	model := forecasting.NewModel()
	obs := history(45, 120, -0.3, 15)

	first, _, err := model.Forecast(obs, 14)
	require.NoError(t, err)
	second, _, err := model.Forecast(obs, 14)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestModel_Forecast_ToleratesCalendarGaps(t *testing.T) {
	model := forecasting.NewModel()
	obs := history(30, 90, 0.5, 8)
	// Drop a chunk in the middle; the store does not guarantee contiguity.
	gappy := append(append([]forecasting.Observation{}, obs[:10]...), obs[15:]...)

	points, _, err := model.Forecast(gappy, 7)
	require.NoError(t, err)
	assert.Len(t, points, 7)
	for _, p := range points {
		assert.False(t, math.IsNaN(p.PredictedOccupancy))
	}
}

func TestModel_Forecast_ConstantSeries(t *testing.T) {
	model := forecasting.NewModel()
	obs := make([]forecasting.Observation, 20)
	for i := range obs {
		obs[i] = forecasting.Observation{Date: day(i), OccupiedBeds: 75}
	}

	points, _, err := model.Forecast(obs, 7)
	require.NoError(t, err)
	for _, p := range points {
		assert.InDelta(t, 75, p.PredictedOccupancy, 1.0)
		assert.Less(t, p.LowerBound, p.UpperBound)
	}
}

func TestModel_Forecast_TrendFollowed(t *testing.T) {
	model := forecasting.NewModel()
	// Steady growth of 2 beds/day should carry into the forecast.
	points, _, err := model.Forecast(history(28, 100, 2, 0), 7)
	require.NoError(t, err)

	lastObserved := 100 + 2*float64(27)
	assert.Greater(t, points[6].PredictedOccupancy, lastObserved)
}
