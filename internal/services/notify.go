package services

// Notifier pushes ledger change events to a user's live connections.
type Notifier interface {
	Notify(userID int64, action string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(int64, string, interface{}) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
