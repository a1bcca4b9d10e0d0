package indicators

import (
	"fmt"
	"math"

	"CoinPulse/internal/domain/models"
)

// Window lengths mirror the common charting defaults the bot exposes.
const (
	smaFastWindow   = 7
	smaSlowWindow   = 25
	emaFastWindow   = 12
	emaSlowWindow   = 26
	macdSignalSpan  = 9
	rsiWindow       = 14
	stochWindow     = 14
	stochSmoothing  = 3
	williamsWindow  = 14
	bollingerWindow = 20
	bollingerWidth  = 2.0
	volumeSMAWindow = 20
	vwapWindow      = 14
	rangeWindow     = 20
)

// Engine derives the full indicator column set from raw candles. Leading
// positions without enough history carry NaN as the missing marker.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Compute builds every indicator column over the candle series. The output
// keeps one value per candle for every column in models.FeatureColumns.
func (e *Engine) Compute(candles []models.Candle) (*models.IndicatorSeries, error) {
	n := len(candles)
	if n == 0 {
		return nil, fmt.Errorf("compute indicators: empty candle series")
	}

	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, c := range candles {
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		closes[i] = c.Close
		volume[i] = c.Volume
	}

	cols := make(map[string][]float64, len(models.FeatureColumns()))
	cols[models.ColOpen] = open
	cols[models.ColHigh] = high
	cols[models.ColLow] = low
	cols[models.ColVolume] = volume

	cols[models.ColSMA7] = SMA(closes, smaFastWindow)
	cols[models.ColSMA25] = SMA(closes, smaSlowWindow)

	emaFast := EMA(closes, emaFastWindow)
	emaSlow := EMA(closes, emaSlowWindow)
	cols[models.ColEMA12] = emaFast
	cols[models.ColEMA26] = emaSlow

	macd := sub(emaFast, emaSlow)
	cols[models.ColMACD] = macd
	cols[models.ColMACDSignal] = EMA(macd, macdSignalSpan)

	cols[models.ColRSI] = RSI(closes, rsiWindow)

	upper, middle, lower := Bollinger(closes, bollingerWindow, bollingerWidth)
	cols[models.ColBBUpper] = upper
	cols[models.ColBBMiddle] = middle
	cols[models.ColBBLower] = lower
	cols[models.ColBBWidth] = bbWidth(upper, middle, lower)

	stochK := StochasticK(high, low, closes, stochWindow)
	cols[models.ColStochK] = stochK
	cols[models.ColStochD] = SMA(stochK, stochSmoothing)

	cols[models.ColWilliamsR] = WilliamsR(high, low, closes, williamsWindow)

	cols[models.ColVolumeSMA] = SMA(volume, volumeSMAWindow)
	cols[models.ColVWAP] = VWAP(high, low, closes, volume, vwapWindow)

	cols[models.ColPriceChg] = priceChange(closes)
	cols[models.ColHighLow] = ratio(high, low)
	cols[models.ColCloseOpen] = ratio(closes, open)
	cols[models.ColVolatility] = RollingStd(closes, bollingerWindow)

	cols[models.ColSupport] = rollingMin(low, rangeWindow)
	cols[models.ColResistance] = rollingMax(high, rangeWindow)

	return &models.IndicatorSeries{Candles: candles, Columns: cols}, nil
}

// SMA is a simple rolling mean. Inputs that are themselves NaN poison the
// windows they fall into, keeping the missing marker contagious.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window < 1 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		var sum float64
		valid := true
		for j := i - window + 1; j <= i; j++ {
			if models.Missing(values[j]) {
				valid = false
				break
			}
			sum += values[j]
		}
		if valid {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA seeds with the simple mean of the first full window of defined values,
// then applies the recursive form with k = 2/(window+1).
func EMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window < 1 {
		return out
	}
	start := firstDefined(values)
	if start < 0 || start+window > len(values) {
		return out
	}

	var seed float64
	for i := start; i < start+window; i++ {
		if models.Missing(values[i]) {
			return out
		}
		seed += values[i]
	}
	seed /= float64(window)

	k := 2.0 / float64(window+1)
	pos := start + window - 1
	out[pos] = seed
	for i := pos + 1; i < len(values); i++ {
		if models.Missing(values[i]) {
			return out
		}
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// RSI uses Wilder smoothing: the first average gain and loss are plain means,
// every later one blends the previous average with the current move.
func RSI(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) <= window {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	w := float64(window)
	for i := window + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(w-1) + gain) / w
		avgLoss = (avgLoss*(w-1) + loss) / w
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// StochasticK locates the close inside the rolling high-low range. A flat
// window has no range, so the oscillator settles at its neutral 50.
func StochasticK(high, low, closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	for i := window - 1; i < len(closes); i++ {
		hh, ll := windowRange(high, low, i, window)
		if hh == ll {
			out[i] = 50
			continue
		}
		out[i] = 100 * (closes[i] - ll) / (hh - ll)
	}
	return out
}

// WilliamsR is the inverted stochastic on a 0..-100 scale, with -50 as the
// flat-window neutral.
func WilliamsR(high, low, closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	for i := window - 1; i < len(closes); i++ {
		hh, ll := windowRange(high, low, i, window)
		if hh == ll {
			out[i] = -50
			continue
		}
		out[i] = -100 * (hh - closes[i]) / (hh - ll)
	}
	return out
}

// Bollinger returns the upper, middle and lower bands using the population
// standard deviation of the window.
func Bollinger(closes []float64, window int, width float64) (upper, middle, lower []float64) {
	n := len(closes)
	upper, middle, lower = nanSlice(n), nanSlice(n), nanSlice(n)
	for i := window - 1; i < n; i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += closes[j]
		}
		mean := sum / float64(window)
		var sq float64
		for j := i - window + 1; j <= i; j++ {
			d := closes[j] - mean
			sq += d * d
		}
		std := math.Sqrt(sq / float64(window))
		middle[i] = mean
		upper[i] = mean + width*std
		lower[i] = mean - width*std
	}
	return upper, middle, lower
}

// RollingStd is the sample standard deviation over a rolling window.
func RollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / float64(window)
		var sq float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(window-1))
	}
	return out
}

// VWAP is the volume-weighted typical price over a rolling window.
func VWAP(high, low, closes, volume []float64, window int) []float64 {
	out := nanSlice(len(closes))
	for i := window - 1; i < len(closes); i++ {
		var pv, v float64
		for j := i - window + 1; j <= i; j++ {
			tp := (high[j] + low[j] + closes[j]) / 3
			pv += tp * volume[j]
			v += volume[j]
		}
		if v > 0 {
			out[i] = pv / v
		}
	}
	return out
}

func priceChange(closes []float64) []float64 {
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out[i] = (closes[i] - closes[i-1]) / closes[i-1]
	}
	return out
}

func ratio(num, den []float64) []float64 {
	out := nanSlice(len(num))
	for i := range num {
		if den[i] == 0 {
			continue
		}
		out[i] = num[i] / den[i]
	}
	return out
}

func rollingMin(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	for i := window - 1; i < len(values); i++ {
		m := values[i]
		for j := i - window + 1; j < i; j++ {
			if values[j] < m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}

func rollingMax(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	for i := window - 1; i < len(values); i++ {
		m := values[i]
		for j := i - window + 1; j < i; j++ {
			if values[j] > m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}

func bbWidth(upper, middle, lower []float64) []float64 {
	out := nanSlice(len(middle))
	for i := range middle {
		if models.Missing(middle[i]) || middle[i] == 0 {
			continue
		}
		out[i] = (upper[i] - lower[i]) / middle[i]
	}
	return out
}

func windowRange(high, low []float64, end, window int) (hh, ll float64) {
	hh, ll = high[end], low[end]
	for j := end - window + 1; j < end; j++ {
		if high[j] > hh {
			hh = high[j]
		}
		if low[j] < ll {
			ll = low[j]
		}
	}
	return hh, ll
}

func sub(a, b []float64) []float64 {
	out := nanSlice(len(a))
	for i := range a {
		if models.Missing(a[i]) || models.Missing(b[i]) {
			continue
		}
		out[i] = a[i] - b[i]
	}
	return out
}

func firstDefined(values []float64) int {
	for i, v := range values {
		if !models.Missing(v) {
			return i
		}
	}
	return -1
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
