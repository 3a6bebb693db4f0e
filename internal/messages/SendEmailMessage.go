package messages

import (
	"Sigil/internal/repositories"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type SendEmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (m *SendEmailMessage) OutboxMessageType() repositories.OutboxMessageType {
	return repositories.SendMailOutboxMessageType
}

func (m *SendEmailMessage) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *SendEmailMessage) Scan(value any) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("type assertion for outbox message failed")
	}

	return json.Unmarshal(bytes, &m)
}
