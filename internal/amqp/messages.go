package amqp

import (
	"encoding/json"
	"time"
)

// PaymentSyncMessage is a lightweight notification that a payment needs
// to be mirrored to the fee register. It carries only the payment ID;
// the worker fetches the full record from the database.
type PaymentSyncMessage struct {
	PaymentID string    `json:"payment_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPaymentSyncMessage creates a sync message for the given payment
func NewPaymentSyncMessage(paymentID string) *PaymentSyncMessage {
	return &PaymentSyncMessage{
		PaymentID: paymentID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PaymentSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentSyncMessageFromJSON creates a message from JSON bytes
func PaymentSyncMessageFromJSON(data []byte) (*PaymentSyncMessage, error) {
	var msg PaymentSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
