package mocks

import "context"

// SentMail captures one message delivered through the mock.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer implements mailer.Mailer for testing, recording every
// message it is asked to send.
type MockMailer struct {
	SendFn func(ctx context.Context, to, subject, body string) error

	Sent    []SentMail
	SendErr error
}

// Send implements the mailer.Mailer interface.
func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFn != nil {
		return m.SendFn(ctx, to, subject, body)
	}
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}
