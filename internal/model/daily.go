package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AlertType names a rule that fired during a daily run.
type AlertType string

const (
	AlertNegativeBalance AlertType = "NEGATIVE_BALANCE"
	AlertAssetCrash      AlertType = "ASSET_CRASH"
	AlertAssetBoom       AlertType = "ASSET_BOOM"
)

// Alert flags a notable condition in a simulated day.
type Alert struct {
	Type           AlertType `json:"type"`
	Severity       Severity  `json:"severity"`
	Message        string    `json:"message"`
	AffectedUsers  []string  `json:"affectedUsers,omitempty"`
	AffectedAssets []string  `json:"affectedAssets,omitempty"`
}

// EventRef is the compact form of an event kept on the daily summary.
type EventRef struct {
	ID     string    `json:"id"`
	Type   EventType `json:"type"`
	Impact float64   `json:"impact"`
}

// AssetPerformance is one asset's line in the daily metadata.
type AssetPerformance struct {
	Symbol     string  `json:"symbol"`
	Variation  float64 `json:"variation"`
	FinalValue float64 `json:"finalValue"`
}

// UserPerformance is one user's line in the daily metadata.
type UserPerformance struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	BalanceChange decimal.Decimal `json:"balanceChange"`
}

// DailyMetadata is stored as JSON on the daily summary.
type DailyMetadata struct {
	AssetPerformance []AssetPerformance `json:"assetPerformance"`
	UserPerformance  []UserPerformance  `json:"userPerformance"`
}

// DailySimulation summarizes one simulated day. At most one row exists per date.
//
// TotalBalanceChange and TotalBalanceChangePercent are measured against the
// sum of initial balances, so they are cumulative since the simulation began.
// MarketVolatility is the mean of the assets' static volatility constants.
type DailySimulation struct {
	ID                        string                            `gorm:"type:varchar(36);primaryKey" json:"id"`
	Date                      time.Time                         `gorm:"type:date;not null;uniqueIndex" json:"date"`
	TotalUsers                int                               `json:"totalUsers"`
	TotalAccounts             int                               `json:"totalAccounts"`
	TotalAssets               int                               `json:"totalAssets"`
	TotalTransactions         int                               `json:"totalTransactions"`
	TotalEvents               int                               `json:"totalEvents"`
	TotalBalance              decimal.Decimal                   `gorm:"type:decimal(20,2);not null" json:"totalBalance"`
	TotalBalanceChange        decimal.Decimal                   `gorm:"type:decimal(20,2);not null" json:"totalBalanceChange"`
	TotalBalanceChangePercent float64                           `json:"totalBalanceChangePercent"`
	TotalIncome               decimal.Decimal                   `gorm:"type:decimal(20,2);not null" json:"totalIncome"`
	TotalExpenses             decimal.Decimal                   `gorm:"type:decimal(20,2);not null" json:"totalExpenses"`
	TotalInvestments          decimal.Decimal                   `gorm:"type:decimal(20,2);not null" json:"totalInvestments"`
	TotalDividends            decimal.Decimal                   `gorm:"type:decimal(20,2);not null" json:"totalDividends"`
	TotalFees                 decimal.Decimal                   `gorm:"type:decimal(20,2);not null" json:"totalFees"`
	MarketPerformance         float64                           `json:"marketPerformance"`
	BestPerformingAsset       string                            `gorm:"size:100" json:"bestPerformingAsset"`
	WorstPerformingAsset      string                            `gorm:"size:100" json:"worstPerformingAsset"`
	BestPerformingUser        string                            `gorm:"size:100" json:"bestPerformingUser"`
	WorstPerformingUser       string                            `gorm:"size:100" json:"worstPerformingUser"`
	MarketVolatility          float64                           `json:"marketVolatility"`
	ActiveEvents              datatypes.JSONSlice[EventRef]     `json:"activeEvents"`
	Alerts                    datatypes.JSONSlice[Alert]        `json:"alerts"`
	Summary                   string                            `gorm:"type:text" json:"summary"`
	Metadata                  datatypes.JSONType[DailyMetadata] `json:"metadata"`
	CreatedAt                 time.Time                         `json:"createdAt"`
}

func (DailySimulation) TableName() string { return "daily_simulations" }

// DayBatch is everything one daily run writes. It is persisted all-or-nothing.
type DayBatch struct {
	Date         time.Time
	Markets      []MarketSimulation
	Events       []SimulatedEvent
	Transactions []SimulatedTransaction
	Summary      DailySimulation
}
