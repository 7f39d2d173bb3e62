package model

import (
	"time"

	"gorm.io/datatypes"
)

// AssetType classifies a simulated instrument.
type AssetType string

const (
	AssetStock     AssetType = "STOCK"
	AssetETF       AssetType = "ETF"
	AssetCrypto    AssetType = "CRYPTO"
	AssetFund      AssetType = "FUND"
	AssetBond      AssetType = "BOND"
	AssetCommodity AssetType = "COMMODITY"
)

// Asset is an instrument whose value walks from one simulated day to the next.
type Asset struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Type         AssetType `json:"type"`
	CurrentValue float64   `json:"currentValue"`
	Sector       string    `json:"sector"`
	Country      string    `json:"country"`
	Volatility   float64   `json:"volatility"`
}

// Session tells a full daily run apart from an intraday market refresh.
type Session string

const (
	SessionDaily    Session = "DAILY"
	SessionIntraday Session = "INTRADAY"
)

// Sentiment is the direction of a single asset move.
type Sentiment string

const (
	SentimentBullish Sentiment = "BULLISH"
	SentimentBearish Sentiment = "BEARISH"
)

// MarketMetadata is stored as JSON next to each market row.
type MarketMetadata struct {
	PreviousValue   float64   `json:"previousValue"`
	MarketSentiment Sentiment `json:"marketSentiment"`
}

// MarketSimulation is one asset's move on one simulated day.
// FinalValue always equals InitialValue * (1 + Variation/100).
type MarketSimulation struct {
	ID                string                             `gorm:"type:varchar(36);primaryKey" json:"id"`
	Date              time.Time                          `gorm:"type:date;not null;index:idx_market_date_symbol,priority:1" json:"date"`
	Session           Session                            `gorm:"size:10;not null;default:DAILY" json:"session"`
	Asset             string                             `gorm:"size:100;not null" json:"asset"`
	AssetType         AssetType                          `gorm:"size:20;not null" json:"assetType"`
	Symbol            string                             `gorm:"size:20;not null;index:idx_market_date_symbol,priority:2" json:"symbol"`
	InitialValue      float64                            `gorm:"not null" json:"initialValue"`
	FinalValue        float64                            `gorm:"not null" json:"finalValue"`
	Variation         float64                            `gorm:"not null" json:"variation"`
	AbsoluteVariation float64                            `gorm:"not null" json:"absoluteVariation"`
	Volume            float64                            `json:"volume"`
	MarketCap         float64                            `json:"marketCap"`
	Volatility        float64                            `json:"volatility"`
	Sector            string                             `gorm:"size:50" json:"sector"`
	Country           string                             `gorm:"size:50" json:"country"`
	Metadata          datatypes.JSONType[MarketMetadata] `json:"metadata"`
	CreatedAt         time.Time                          `json:"createdAt"`
}

func (MarketSimulation) TableName() string { return "market_simulations" }
