package models

import "time"

// TransactionType тип операции.
type TransactionType string

// Типы операций.
const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Transaction доход или расход пользователя. Сумма хранится в центах.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	Type        TransactionType `json:"type"`
	AmountCents int64           `json:"amountCents"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	OccurredOn  time.Time       `json:"occurredOn"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TransactionFilter фильтр списка операций.
type TransactionFilter struct {
	Type   *TransactionType
	From   *time.Time
	To     *time.Time
	Search string
	Page
}

// TransactionPatch частичное обновление операции; nil означает "не менять".
type TransactionPatch struct {
	Type        *TransactionType
	AmountCents *int64
	Description *string
	Category    *string
	OccurredOn  *time.Time
}

// Totals итоги по операциям.
type Totals struct {
	TotalIncome  int64 `json:"totalIncome"`
	TotalExpense int64 `json:"totalExpense"`
	Balance      int64 `json:"balance"`
}

// CategoryTotal сумма расходов по категории.
type CategoryTotal struct {
	Category    string `json:"category"`
	AmountCents int64  `json:"amountCents"`
	Count       int    `json:"count"`
}

// TransactionList страница операций с итогами по фильтру.
type TransactionList struct {
	Items      []Transaction `json:"items"`
	Pagination Pagination    `json:"pagination"`
	Summary    Totals        `json:"summary"`
}

// Report сводка за период.
type Report struct {
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
	Totals     Totals          `json:"totals"`
	ByCategory []CategoryTotal `json:"byCategory"`
}
