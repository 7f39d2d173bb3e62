package simulation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"FinSim/internal/catalog"
	"FinSim/internal/model"
)

const (
	salaryBase         = 2500.0
	salarySpread       = 1000.0
	extraTxProbability = 0.15
	employer           = "Azienda S.p.A."
)

// extraTxTypes are the kinds an occasional transaction is drawn from, uniformly.
var extraTxTypes = []model.TransactionType{model.TxIncome, model.TxExpense, model.TxInvestment, model.TxDividend}

// GenerateUserTransactions produces one user's movements for date, in order:
// salary on the first of the month, the recurring expenses that occur, then
// at most one occasional transaction. The balance threads through every row
// and is never clamped.
func GenerateUserTransactions(user model.SimulatedUser, date time.Time, currency string, src Source) []model.SimulatedTransaction {
	b := &txBuilder{user: user, date: date, currency: currency, balance: user.CurrentBalance}

	if date.Day() == 1 {
		tx := b.add(model.TxIncome, "Salary", salaryBase+src.Float64()*salarySpread,
			fmt.Sprintf("Monthly salary - %s", user.Name))
		tx.Subcategory = "Monthly Salary"
		tx.Counterparty = employer
		tx.Reference = fmt.Sprintf("SAL-%04d-%02d", date.Year(), int(date.Month()))
	}

	for _, e := range catalog.Expenses() {
		if src.Float64() >= catalog.ExpenseProbability {
			continue
		}
		tx := b.add(model.TxExpense, e.Category, e.Base*(0.8+src.Float64()*0.4), e.Description)
		tx.IsRecurring = true
		tx.RecurringFrequency = model.FrequencyMonthly
	}

	if src.Float64() < extraTxProbability {
		switch typ := pick(extraTxTypes, src); typ {
		case model.TxIncome:
			b.add(typ, "Bonus", 100+src.Float64()*500, "Occasional bonus")
		case model.TxExpense:
			b.add(typ, "Unexpected", -(50 + src.Float64()*200), "Unexpected expense")
		case model.TxInvestment:
			b.add(typ, "Investment", -(200 + src.Float64()*800), "Securities purchase")
		case model.TxDividend:
			b.add(typ, "Dividend", 20+src.Float64()*100, "Investment dividend")
		}
	}

	return b.txs
}

type txBuilder struct {
	user     model.SimulatedUser
	date     time.Time
	currency string
	balance  decimal.Decimal
	txs      []model.SimulatedTransaction
}

// add appends a transaction of amount (rounded to cents) chained on the
// running balance and returns it for further decoration.
func (b *txBuilder) add(typ model.TransactionType, category string, amount float64, description string) *model.SimulatedTransaction {
	amt := decimal.NewFromFloat(amount).Round(2)
	before := b.balance
	b.balance = before.Add(amt)
	b.txs = append(b.txs, model.SimulatedTransaction{
		ID:            uuid.NewString(),
		Date:          b.date,
		Seq:           len(b.txs),
		UserID:        b.user.ID,
		AccountID:     b.user.AccountID(),
		Type:          typ,
		Category:      category,
		Amount:        amt,
		Currency:      b.currency,
		Description:   description,
		BalanceBefore: before,
		BalanceAfter:  b.balance,
	})
	return &b.txs[len(b.txs)-1]
}
