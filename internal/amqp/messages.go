package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageKind distinguishes the two ledger change events on the sync queue.
type MessageKind string

const (
	KindSync   MessageKind = "sync"
	KindDelete MessageKind = "delete"
)

// TransactionMessage is a compact ledger change event. It carries only the
// transaction ID; the worker resolves the full row from storage.
type TransactionMessage struct {
	Kind      MessageKind `json:"kind"`
	ID        int64       `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewSyncMessage(id int64) *TransactionMessage {
	return &TransactionMessage{Kind: KindSync, ID: id, Timestamp: time.Now()}
}

func NewDeleteMessage(id int64) *TransactionMessage {
	return &TransactionMessage{Kind: KindDelete, ID: id, Timestamp: time.Now()}
}

func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindSync, KindDelete:
	default:
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	return &msg, nil
}
