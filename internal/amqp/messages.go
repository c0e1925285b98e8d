package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotExportMessage asks the worker to re-export one month's budget
// snapshot. It carries only the month key and a version counter; the worker
// loads the current state from storage, so a burst of messages for the same
// month collapses into exporting the latest state repeatedly.
type SnapshotExportMessage struct {
	MonthKey  string    `json:"month_key"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotExportMessage creates a new export message
func NewSnapshotExportMessage(monthKey string, version int64) *SnapshotExportMessage {
	return &SnapshotExportMessage{
		MonthKey:  monthKey,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotExportMessageFromJSON creates a message from JSON bytes
func SnapshotExportMessageFromJSON(data []byte) (*SnapshotExportMessage, error) {
	var msg SnapshotExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
