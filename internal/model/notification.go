package model

import "context"

// NotificationTemplate selects the message body rendered by the notifier.
type NotificationTemplate string

const (
	TemplateOnboard       NotificationTemplate = "onboard"
	TemplatePasswordReset NotificationTemplate = "password_reset"
	TemplatePlain         NotificationTemplate = "plain"
)

// Notification is a best-effort message to an identity or the admin channel.
// FromEmail overrides the notifier's default sender address when set.
type Notification struct {
	Subject   string
	FromEmail string
	To        VerifyKey
	ToEmail   string
	Body      string
	Channels  []NotifierChannel
	Template  NotificationTemplate
}

// Notifier is the delivery boundary. Send failures must never propagate into
// the caller's critical path; callers log and move on.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
