package models

import "math"

// Derived indicator column names. The engine fills every one of these;
// FeatureColumns below fixes the model input schema.
const (
	ColOpen       = "open"
	ColHigh       = "high"
	ColLow        = "low"
	ColVolume     = "volume"
	ColSMA7       = "sma_7"
	ColSMA25      = "sma_25"
	ColEMA12      = "ema_12"
	ColEMA26      = "ema_26"
	ColMACD       = "macd"
	ColMACDSignal = "macd_signal"
	ColRSI        = "rsi"
	ColBBUpper    = "bb_upper"
	ColBBLower    = "bb_lower"
	ColBBMiddle   = "bb_middle"
	ColBBWidth    = "bb_width"
	ColStochK     = "stoch_k"
	ColStochD     = "stoch_d"
	ColWilliamsR  = "williams_r"
	ColVolumeSMA  = "volume_sma"
	ColVWAP       = "vwap"
	ColPriceChg   = "price_change"
	ColHighLow    = "high_low_ratio"
	ColCloseOpen  = "close_open_ratio"
	ColVolatility = "volatility"
	ColSupport    = "support"
	ColResistance = "resistance"
)

// FeatureSchemaVersion is bumped whenever FeatureColumns changes, so stored
// artifacts trained on an older schema fail loudly instead of silently.
const FeatureSchemaVersion = 1

// FeatureColumns returns the fixed, ordered model input schema.
// Order matters: the scaler and regressors are fit on exactly this layout.
func FeatureColumns() []string {
	return []string{
		ColOpen, ColHigh, ColLow, ColVolume,
		ColSMA7, ColSMA25, ColEMA12, ColEMA26,
		ColMACD, ColMACDSignal, ColRSI,
		ColBBUpper, ColBBLower, ColBBMiddle, ColBBWidth,
		ColStochK, ColStochD, ColWilliamsR,
		ColVolumeSMA, ColVWAP,
		ColPriceChg, ColHighLow, ColCloseOpen,
		ColVolatility, ColSupport, ColResistance,
	}
}

// IndicatorSeries is a candle sequence extended with derived columns.
// Every column slice has the same length as Candles; NaN marks rows where
// the trailing window is not yet populated.
type IndicatorSeries struct {
	Candles []Candle
	Columns map[string][]float64
}

// Len returns the number of rows.
func (s *IndicatorSeries) Len() int { return len(s.Candles) }

// Column returns the named derived column, or false if absent.
func (s *IndicatorSeries) Column(name string) ([]float64, bool) {
	c, ok := s.Columns[name]
	return c, ok
}

// Missing reports whether v is the missing marker.
func Missing(v float64) bool { return math.IsNaN(v) }

// TechnicalSummary is a human-oriented snapshot of the latest indicator row.
type TechnicalSummary struct {
	Symbol       string   `json:"symbol"`
	CurrentPrice float64  `json:"current_price"`
	RSI          float64  `json:"rsi"`
	MACD         float64  `json:"macd"`
	Support      float64  `json:"support"`
	Resistance   float64  `json:"resistance"`
	BBPosition   string   `json:"bb_position"`
	Trend        string   `json:"trend"`
	Signals      []string `json:"signals"`
}
