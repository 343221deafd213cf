package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"saledash/internal/domain/ingestion"
)

// DatasetSyncedMessage is published once per successful dataset sync.
// Consumers re-read the store rather than expecting records in the body.
type DatasetSyncedMessage struct {
	RunID     uuid.UUID `json:"runId"`
	Fetched   int       `json:"fetched"`
	Stored    int64     `json:"stored"`
	SyncedAt  time.Time `json:"syncedAt"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDatasetSyncedMessage(event ingestion.DatasetSynced) *DatasetSyncedMessage {
	return &DatasetSyncedMessage{
		RunID:     event.RunID,
		Fetched:   event.Fetched,
		Stored:    event.Stored,
		SyncedAt:  event.SyncedAt,
		Timestamp: time.Now(),
	}
}

func (m *DatasetSyncedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DatasetSyncedMessageFromJSON(data []byte) (*DatasetSyncedMessage, error) {
	var msg DatasetSyncedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
