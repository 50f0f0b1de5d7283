package constant

const (
	LogFieldErr      = "error"
	LogFieldTraceId  = "trace_id"
	LogFieldRunId    = "run_id"
	LogFieldPayload  = "payload"
	LogFieldResponse = "response"
	LogFieldEventId  = "event_id"
	LogFieldUserId   = "user_id"
	LogFieldSeatId   = "seat_id"
	LogFieldTicketId = "ticket_id"
	LogFieldJob      = "job"
)
