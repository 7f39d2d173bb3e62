package simulation

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"FinSim/internal/model"
)

// MaxVariation bounds a single day's move in either direction, in percent.
const MaxVariation = 50.0

// GenerateVariation draws a percentage move for asset. Twelve centred uniform
// draws are averaged into a bell-shaped value, scaled by the asset's
// volatility and clamped to [-MaxVariation, MaxVariation].
func GenerateVariation(asset model.Asset, src Source) float64 {
	sum := 0.0
	for i := 0; i < 12; i++ {
		sum += (src.Float64() - 0.5) * 2
	}
	v := sum / 12 * asset.Volatility * 100
	return math.Max(-MaxVariation, math.Min(MaxVariation, v))
}

// SimulateMarket moves every asset once and returns the rows together with the
// assets carrying their new values.
func SimulateMarket(date time.Time, session model.Session, assets []model.Asset, src Source) ([]model.MarketSimulation, []model.Asset) {
	rows := make([]model.MarketSimulation, 0, len(assets))
	next := make([]model.Asset, len(assets))
	for i, a := range assets {
		variation := GenerateVariation(a, src)
		initial := a.CurrentValue
		final := initial * (1 + variation/100)

		sentiment := model.SentimentBearish
		if variation > 0 {
			sentiment = model.SentimentBullish
		}

		rows = append(rows, model.MarketSimulation{
			ID:                uuid.NewString(),
			Date:              date,
			Session:           session,
			Asset:             a.Name,
			AssetType:         a.Type,
			Symbol:            a.Symbol,
			InitialValue:      initial,
			FinalValue:        final,
			Variation:         variation,
			AbsoluteVariation: final - initial,
			Volume:            src.Float64() * 1_000_000,
			MarketCap:         final * (1_000_000 + src.Float64()*9_000_000),
			Volatility:        a.Volatility,
			Sector:            a.Sector,
			Country:           a.Country,
			Metadata: datatypes.NewJSONType(model.MarketMetadata{
				PreviousValue:   initial,
				MarketSentiment: sentiment,
			}),
		})

		a.CurrentValue = final
		next[i] = a
	}
	return rows, next
}
