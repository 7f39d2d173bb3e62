package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of a simulated bank movement.
type TransactionType string

const (
	TxIncome      TransactionType = "INCOME"
	TxExpense     TransactionType = "EXPENSE"
	TxTransfer    TransactionType = "TRANSFER"
	TxInvestment  TransactionType = "INVESTMENT"
	TxDividend    TransactionType = "DIVIDEND"
	TxFee         TransactionType = "FEE"
	TxLoanPayment TransactionType = "LOAN_PAYMENT"
	TxRefund      TransactionType = "REFUND"
	TxMarketCrash TransactionType = "MARKET_CRASH"
	TxMarketBoom  TransactionType = "MARKET_BOOM"
)

// Frequency of a recurring transaction.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// SimulatedTransaction is one signed movement on a user's account.
// BalanceAfter = BalanceBefore + Amount, and within one user and date the
// transactions chain: each BalanceBefore is the previous BalanceAfter.
type SimulatedTransaction struct {
	ID                 string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Date               time.Time       `gorm:"type:date;not null;index:idx_tx_user_date,priority:2;index" json:"date"`
	Seq                int             `gorm:"not null" json:"seq"`
	UserID             string          `gorm:"size:50;not null;index:idx_tx_user_date,priority:1" json:"userId"`
	AccountID          string          `gorm:"size:60;not null" json:"accountId"`
	Type               TransactionType `gorm:"size:20;not null" json:"type"`
	Category           string          `gorm:"size:50" json:"category"`
	Subcategory        string          `gorm:"size:50" json:"subcategory"`
	Amount             decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency           string          `gorm:"size:3;not null" json:"currency"`
	Description        string          `gorm:"size:255" json:"description"`
	BalanceBefore      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balanceBefore"`
	BalanceAfter       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balanceAfter"`
	Counterparty       string          `gorm:"size:100" json:"counterparty,omitempty"`
	Reference          string          `gorm:"size:50" json:"reference,omitempty"`
	IsRecurring        bool            `gorm:"not null" json:"isRecurring"`
	RecurringFrequency Frequency       `gorm:"size:10" json:"recurringFrequency,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

func (SimulatedTransaction) TableName() string { return "simulated_transactions" }
