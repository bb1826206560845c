package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotSyncMessage asks the worker to mirror the local snapshot to the
// remote tier. It carries only the revision; the worker reads the actual
// state from the local store, so a burst of mutations collapses into the
// newest one.
type SnapshotSyncMessage struct {
	Revision  uint64    `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSnapshotSyncMessage(revision uint64) *SnapshotSyncMessage {
	return &SnapshotSyncMessage{
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

func (m *SnapshotSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotSyncMessageFromJSON(data []byte) (*SnapshotSyncMessage, error) {
	var msg SnapshotSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
