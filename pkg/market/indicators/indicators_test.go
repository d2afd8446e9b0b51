package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yidino-api/pkg/market"
)

var closes = []float64{100, 101, 102, 103, 105, 107, 106, 108, 110, 111, 112, 115, 117, 119, 118, 120, 121, 123, 125, 124, 126, 127, 129, 130, 132, 133, 134, 135, 136, 138, 139, 141, 140, 142, 144, 143, 145, 147, 149, 148, 150, 151, 149, 148, 150, 152, 151, 153, 154, 156, 155, 157, 158, 160, 161, 159, 158, 157, 159, 160}

func TestEMA(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	result := EMA(data, 3)
	require.Len(t, result, len(data))
	require.True(t, math.IsNaN(result[0]))
	require.True(t, math.IsNaN(result[1]))
	require.InDelta(t, 2.0, result[2], 1e-9)
	require.InDelta(t, 3.0, result[3], 1e-9)
	require.InDelta(t, 4.0, result[4], 1e-9)
	require.InDelta(t, 5.0, result[5], 1e-9)
}

func TestEMASkipsGaps(t *testing.T) {
	nan := math.NaN()
	result := EMA([]float64{nan, 3, 3, 3, nan, 5}, 3)
	require.True(t, math.IsNaN(result[2]))
	require.InDelta(t, 3.0, result[3], 1e-9)
	require.InDelta(t, 3.0, result[4], 1e-9, "gap carries the average")
	require.InDelta(t, 4.0, result[5], 1e-9)

	assert.Empty(t, EMA(nil, 3))
	assert.Empty(t, EMA([]float64{1}, 0))
}

func TestRSI(t *testing.T) {
	rsi := RSI(closes, 14)
	require.Len(t, rsi, len(closes))
	require.True(t, math.IsNaN(rsi[13]))
	require.False(t, math.IsNaN(rsi[14]))
	require.InDelta(t, 73.084185, rsi[len(rsi)-1], 1e-6)
}

func TestRSIFlatAndOneSided(t *testing.T) {
	assert.Equal(t, 50.0, RSI([]float64{1, 1, 1}, 2)[2])
	assert.Equal(t, 100.0, RSI([]float64{1, 2, 3}, 2)[2])
	assert.Equal(t, 0.0, RSI([]float64{3, 2, 1}, 2)[2])
}

func TestPricesReversesAndMarksGaps(t *testing.T) {
	prices := Prices([]market.Snapshot{{Price: 3}, {Price: 0}, {Price: 1}})
	require.Len(t, prices, 3)
	assert.Equal(t, 1.0, prices[0])
	assert.True(t, math.IsNaN(prices[1]))
	assert.Equal(t, 3.0, prices[2])
}

func TestSummarize(t *testing.T) {
	s := Summarize(closes, DefaultEMAPeriod, DefaultRSIPeriod)
	assert.Equal(t, len(closes), s.Samples)
	require.NotNil(t, s.First)
	require.NotNil(t, s.Last)
	assert.Equal(t, 100.0, *s.First)
	assert.Equal(t, 160.0, *s.Last)
	require.NotNil(t, s.ChangePct)
	assert.InDelta(t, 60.0, *s.ChangePct, 1e-9)
	require.NotNil(t, s.EMA)
	require.NotNil(t, s.RSI)
	assert.InDelta(t, 73.084185, *s.RSI, 1e-6)

	short := Summarize([]float64{1, 2}, DefaultEMAPeriod, DefaultRSIPeriod)
	assert.Equal(t, 2, short.Samples)
	assert.Nil(t, short.EMA)
	assert.Nil(t, short.RSI)

	empty := Summarize(nil, DefaultEMAPeriod, DefaultRSIPeriod)
	assert.Zero(t, empty.Samples)
	assert.Nil(t, empty.Last)
	assert.Nil(t, empty.ChangePct)
}
