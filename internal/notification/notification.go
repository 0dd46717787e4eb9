// Package notification unwraps the email delivered by an SES receipt rule
// through SNS.
package notification

import (
	"github.com/aws/aws-lambda-go/events"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
)

var (
	// ErrNoRecords is returned for an SNS event without any record.
	ErrNoRecords = errors.New("sns event has no records")
	// ErrNoContent is returned when the SES notification carries no email
	// content, e.g. when the receipt rule is not an SNS action.
	ErrNoContent = errors.New("ses notification has no content")
)

// Message is the SES notification published to SNS by an SNS receipt-rule
// action. Content holds the raw MIME email.
type Message struct {
	NotificationType string                    `json:"notificationType"`
	Mail             events.SimpleEmailMessage `json:"mail"`
	Content          string                    `json:"content"`
}

// Subject returns the email subject from the common headers, if present.
func (m Message) Subject() string {
	return m.Mail.CommonHeaders.Subject
}

// Unwrap decodes the message of the first record in event. Only one email per
// invocation is handled.
func Unwrap(event events.SNSEvent) (Message, error) {
	var msg Message
	if len(event.Records) == 0 {
		return msg, ErrNoRecords
	}

	var decoded struct {
		NotificationType string                    `json:"notificationType"`
		Mail             events.SimpleEmailMessage `json:"mail"`
		Content          *string                   `json:"content"`
	}
	raw := event.Records[0].SNS.Message
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return msg, errors.Wrap(err, "failed to decode sns message")
	}
	if decoded.Content == nil {
		return msg, ErrNoContent
	}

	return Message{
		NotificationType: decoded.NotificationType,
		Mail:             decoded.Mail,
		Content:          *decoded.Content,
	}, nil
}
