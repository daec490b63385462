package client

import "github.com/rs/zerolog"

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a user-facing message about the outcome of an auth action.
type Notification struct {
	Level       Level
	Title       string
	Description string
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications as log events.
type LogNotifier struct {
	Log zerolog.Logger
}

func (l LogNotifier) Notify(n Notification) {
	ev := l.Log.Info()
	if n.Level == LevelError {
		ev = l.Log.Warn()
	}
	ev.Str("title", n.Title).Msg(n.Description)
}

func success(desc string) Notification {
	return Notification{Level: LevelSuccess, Title: "Success", Description: desc}
}

func failure(desc string) Notification {
	return Notification{Level: LevelError, Title: "Error", Description: desc}
}
