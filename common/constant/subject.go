package constant

const (
	QueueStreamName = "ticket_rush_stream"
)

const (
	AllWildcard    = "events.>"
	NotifyWildcard = "events.notify.>"

	SubjectNotify = "events.notify.send"
)
