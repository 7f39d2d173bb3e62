package model

import "time"

// EventType enumerates every market or personal event the store accepts.
// Only a subset has a generation template.
type EventType string

const (
	EventMarketCrash            EventType = "MARKET_CRASH"
	EventMarketBoom             EventType = "MARKET_BOOM"
	EventSectorCrash            EventType = "SECTOR_CRASH"
	EventSectorBoom             EventType = "SECTOR_BOOM"
	EventEconomicRecession      EventType = "ECONOMIC_RECESSION"
	EventEconomicGrowth         EventType = "ECONOMIC_GROWTH"
	EventInterestRateChange     EventType = "INTEREST_RATE_CHANGE"
	EventInflationSpike         EventType = "INFLATION_SPIKE"
	EventDeflation              EventType = "DEFLATION"
	EventCurrencyCrash          EventType = "CURRENCY_CRASH"
	EventCurrencyBoom           EventType = "CURRENCY_BOOM"
	EventRegulatoryChange       EventType = "REGULATORY_CHANGE"
	EventPoliticalCrisis        EventType = "POLITICAL_CRISIS"
	EventNaturalDisaster        EventType = "NATURAL_DISASTER"
	EventTechnologyBreakthrough EventType = "TECHNOLOGY_BREAKTHROUGH"
	EventCorporateScandal       EventType = "CORPORATE_SCANDAL"
	EventMergerAcquisition      EventType = "MERGER_ACQUISITION"
	EventIPOSuccess             EventType = "IPO_SUCCESS"
	EventBankruptcy             EventType = "BANKRUPTCY"
	EventBonusPayment           EventType = "BONUS_PAYMENT"
	EventTaxChange              EventType = "TAX_CHANGE"
	EventSubsidy                EventType = "SUBSIDY"
	EventPenalty                EventType = "PENALTY"
)

// Severity grades events and alerts.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Scope is how far an event reaches.
type Scope string

const (
	ScopeGlobal     Scope = "GLOBAL"
	ScopeRegional   Scope = "REGIONAL"
	ScopeNational   Scope = "NATIONAL"
	ScopeSectoral   Scope = "SECTORAL"
	ScopeIndividual Scope = "INDIVIDUAL"
)

// SimulatedEvent is a fired event. IsActive is the only field updated after insert.
type SimulatedEvent struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Date           time.Time `gorm:"type:date;not null;index" json:"date"`
	Type           EventType `gorm:"size:30;not null;index" json:"type"`
	Severity       Severity  `gorm:"size:10;not null" json:"severity"`
	Scope          Scope     `gorm:"size:12;not null" json:"scope"`
	Impact         float64   `gorm:"not null" json:"impact"`
	AbsoluteImpact float64   `gorm:"not null" json:"absoluteImpact"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Source         string    `gorm:"size:100" json:"source"`
	Probability    float64   `json:"probability"`
	Duration       int       `gorm:"not null" json:"duration"`
	IsActive       bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (SimulatedEvent) TableName() string { return "simulated_events" }

// ExpiresAt is the first day the event no longer applies.
func (e SimulatedEvent) ExpiresAt() time.Time {
	return e.Date.AddDate(0, 0, e.Duration)
}
