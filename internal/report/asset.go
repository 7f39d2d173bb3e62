package report

import (
	"FinSim/internal/calculator"
	"FinSim/internal/model"
)

// AssetPerformance is the price history of one symbol with indicators.
type AssetPerformance struct {
	Symbol        string                   `json:"symbol"`
	Points        int                      `json:"points"`
	FirstValue    float64                  `json:"firstValue"`
	LastValue     float64                  `json:"lastValue"`
	ChangePercent float64                  `json:"changePercent"`
	High          float64                  `json:"high"`
	Low           float64                  `json:"low"`
	RangePosition float64                  `json:"rangePosition"`
	SMA7          *float64                 `json:"sma7"`
	SMA30         *float64                 `json:"sma30"`
	RSI14         float64                  `json:"rsi14"`
	History       []model.MarketSimulation `json:"history"`
}

// BuildAssetPerformance computes indicators over rows ordered oldest first.
// The series is the initial value of the first row followed by every final value.
func BuildAssetPerformance(symbol string, rows []model.MarketSimulation) *AssetPerformance {
	p := &AssetPerformance{Symbol: symbol, Points: len(rows), History: rows, RSI14: 50}
	if len(rows) == 0 {
		p.History = []model.MarketSimulation{}
		return p
	}

	series := make([]float64, 0, len(rows)+1)
	series = append(series, rows[0].InitialValue)
	for _, r := range rows {
		series = append(series, r.FinalValue)
	}

	p.FirstValue = series[0]
	p.LastValue = series[len(series)-1]
	p.ChangePercent = calculator.ChangePercent(p.FirstValue, p.LastValue)
	p.High, p.Low, _ = calculator.Range(series)
	p.RangePosition, _ = calculator.Position(p.LastValue, p.High, p.Low)
	p.SMA7 = calculator.SMAOrNil(series, 7)
	p.SMA30 = calculator.SMAOrNil(series, 30)
	p.RSI14, _ = calculator.RSI(series, 14)
	return p
}
