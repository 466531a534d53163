package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseCommittedMessage announces a newly committed expense.
// It carries only identifiers; consumers read the expense from the ledger.
type ExpenseCommittedMessage struct {
	UserID    string    `json:"user_id"`
	ExpenseID string    `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseCommittedMessage(userID, expenseID string) *ExpenseCommittedMessage {
	return &ExpenseCommittedMessage{
		UserID:    userID,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseCommittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseCommittedMessageFromJSON(data []byte) (*ExpenseCommittedMessage, error) {
	var msg ExpenseCommittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
