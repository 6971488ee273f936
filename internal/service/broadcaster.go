package service

// Event types carried in the WebSocket envelope. Session events go to
// the session's watcher, host events fan out to every connected host.
const (
	EventProgressUpdate   = "progress_update"
	EventValidationError  = "validation_error"
	EventSessionComplete  = "session_complete"
	EventSessionRestarted = "session_restarted"
	EventLeadCaptured     = "lead_captured"
	EventAnalyticsUpdate  = "analytics_update"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	BroadcastToHosts(msgType string, payload interface{})
	DisconnectSession(sessionID string)
}
