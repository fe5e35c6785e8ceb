package model

// NotificationKind selects the channel a notification is shown on.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	Message string
	Kind    NotificationKind
}
