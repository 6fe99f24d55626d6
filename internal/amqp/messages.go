package amqp

import (
	"encoding/json"
	"time"
)

// BucketChangedMessage announces that a date bucket was rewritten. It carries
// only the date and the resulting item count; consumers reload the bucket.
type BucketChangedMessage struct {
	Date      string    `json:"date"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBucketChangedMessage(date string, count int) *BucketChangedMessage {
	return &BucketChangedMessage{
		Date:      date,
		Count:     count,
		Timestamp: time.Now(),
	}
}

func (m *BucketChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BucketChangedMessageFromJSON(data []byte) (*BucketChangedMessage, error) {
	var msg BucketChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
