package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Payment modes accepted for expenses.
var PaymentModes = []string{"Cash", "Card", "UPI", "Bank Transfer"}

// Expense is a single spending record. Amount keeps the stored decimal
// string as-is.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Amount      string    `json:"amount"`
	Date        time.Time `json:"date"`
	CategoryID  int64     `json:"categoryId"`
	PaymentMode string    `json:"paymentMode"`
	Description *string   `json:"description"`
	Category    *Category `json:"category,omitempty"`
}

// Income is a single earning record.
type Income struct {
	ID     int64     `json:"id"`
	UserID int64     `json:"userId"`
	Amount string    `json:"amount"`
	Date   time.Time `json:"date"`
	Source string    `json:"source"`
}

// ExpenseInput is the payload for creating an expense. Field order is the
// order in which validation problems are reported.
type ExpenseInput struct {
	Amount      FlexString `json:"amount" validate:"required,amount"`
	Date        string     `json:"date" validate:"required,ledgerdate"`
	CategoryID  FlexString `json:"categoryId" validate:"required,number"`
	PaymentMode string     `json:"paymentMode" validate:"required,paymentmode"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
}

// IncomeInput is the payload for creating an income.
type IncomeInput struct {
	Amount FlexString `json:"amount" validate:"required,amount"`
	Date   string     `json:"date" validate:"required,ledgerdate"`
	Source string     `json:"source" validate:"required,max=100"`
}

// FlexString accepts either a JSON string or a bare JSON number and keeps
// the textual form, so "12.50" and 12.50 decode to the same value.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		// Numbers (and anything else) are kept verbatim and left to validation.
		*f = FlexString(data)
	}
	return nil
}

// CategoryTotal is one slice of the per-category expense breakdown.
type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// StatsSummary is the derived, uncached aggregation of a user's ledger.
type StatsSummary struct {
	TotalIncome  string          `json:"totalIncome"`
	TotalExpense string          `json:"totalExpense"`
	Balance      string          `json:"balance"`
	CategoryWise []CategoryTotal `json:"categoryWise"`
}
