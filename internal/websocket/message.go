package websocket

// Actions pushed to clients after a ledger change. Dashboards refetch on any of them.
const (
	ActionExpenseCreated  = "expense.created"
	ActionExpenseDeleted  = "expense.deleted"
	ActionIncomeCreated   = "income.created"
	ActionIncomeDeleted   = "income.deleted"
	ActionCategoryCreated = "category.created"
	ActionCategoryDeleted = "category.deleted"
)

// Message is the envelope of every event sent over the socket.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// Deleted is the payload of the *.deleted actions.
type Deleted struct {
	ID int64 `json:"id"`
}
