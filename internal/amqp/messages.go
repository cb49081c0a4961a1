package amqp

import (
	"encoding/json"
	"time"

	"jiceot/internal/core"
)

const (
	EventDueReminder        = "due.reminder"
	EventCompletionRecorded = "completion.recorded"
)

// DueReminderMessage announces an obligation that is due within the
// reminder window. Consumers deliver it; this service only publishes.
type DueReminderMessage struct {
	Event        string    `json:"event"`
	TypeID       int64     `json:"type_id"`
	Kind         core.Kind `json:"kind"`
	Name         string    `json:"name"`
	DueDate      string    `json:"due_date"`
	DaysUntilDue int       `json:"days_until_due"`
	Amount       string    `json:"amount,omitempty"`
	PrefillLink  string    `json:"prefill_link"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewDueReminderMessage(t core.ObligationType, due time.Time, days int, link string) *DueReminderMessage {
	m := &DueReminderMessage{
		Event:        EventDueReminder,
		TypeID:       t.ID,
		Kind:         t.Kind,
		Name:         t.Name,
		DueDate:      due.Format(time.DateOnly),
		DaysUntilDue: days,
		PrefillLink:  link,
		Timestamp:    time.Now(),
	}
	if t.FixedAmount != nil {
		m.Amount = t.FixedAmount.String()
	}
	return m
}

func (m *DueReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DueReminderMessageFromJSON(data []byte) (*DueReminderMessage, error) {
	var msg DueReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CompletionRecordedMessage is emitted after a payment or expense item has
// been stored for a period.
type CompletionRecordedMessage struct {
	Event       string    `json:"event"`
	ID          int64     `json:"id"`
	TypeID      int64     `json:"type_id"`
	Kind        core.Kind `json:"kind"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewCompletionRecordedMessage(r core.CompletionRecord) *CompletionRecordedMessage {
	return &CompletionRecordedMessage{
		Event:       EventCompletionRecorded,
		ID:          r.ID,
		TypeID:      r.TypeID,
		Kind:        r.Kind,
		Year:        r.Period.Year,
		Month:       r.Period.Month,
		AmountCents: r.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

func (m *CompletionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func CompletionRecordedMessageFromJSON(data []byte) (*CompletionRecordedMessage, error) {
	var msg CompletionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
