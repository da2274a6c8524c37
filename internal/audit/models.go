package audit

import "time"

// Actions recorded by the service.
const (
	ActionContactSubmitted   = "contact_submitted"
	ActionContactRejected    = "contact_rejected"
	ActionConsentGranted     = "consent_granted"
	ActionConsentResolved    = "consent_resolved"
	ActionNotificationFailed = "notification_failed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Raw network addresses
// and session ids never appear in an event.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	RequestID string    `json:"request_id,omitempty"`
	IPPrefix  string    `json:"ip_prefix,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}
