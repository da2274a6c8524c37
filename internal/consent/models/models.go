package models

import (
	"strings"
	"time"
)

// Trust windows per tier. A record is valid strictly before GrantedAt + window.
const (
	SessionTrustWindow = 365 * 24 * time.Hour
	AddressTrustWindow = 30 * 24 * time.Hour
	LocalTrustWindow   = 7 * 24 * time.Hour
)

// LocalClockSkew is how far in the future a client-cached timestamp may lie
// before it is rejected.
const LocalClockSkew = 5 * time.Minute

// TrustSource names the tier that produced a consent decision.
type TrustSource string

const (
	TrustSourceSession TrustSource = "session"
	TrustSourceAddress TrustSource = "ip"
	TrustSourceLocal   TrustSource = "local"
)

// Kind selects the keyspace of the consent store.
type Kind string

const (
	KindSession Kind = "session"
	KindAddress Kind = "address"
)

func (k Kind) String() string { return string(k) }

// TrustWindow returns the validity window of records stored under k.
func (k Kind) TrustWindow() time.Duration {
	if k == KindAddress {
		return AddressTrustWindow
	}
	return SessionTrustWindow
}

// DeviceSummary is the coarse fingerprint extracted from a User-Agent.
// Browser is descriptive and never part of a similarity decision.
type DeviceSummary struct {
	OS          string `json:"os"`
	DeviceClass string `json:"deviceClass"`
	Browser     string `json:"browser,omitempty"`
}

// ConsentRecord is one grant of consent stored under a subject key (session id
// or hashed network address). A later grant for the same key replaces it.
type ConsentRecord struct {
	SubjectKey  string        `json:"subjectKey"`
	Name        string        `json:"name"`
	Company     string        `json:"company"`
	Email       string        `json:"email"`
	UserAgent   string        `json:"userAgent,omitempty"`
	Device      DeviceSummary `json:"userAgentSummary"`
	GrantedAt   time.Time     `json:"grantedAt"`
	TrustWindow time.Duration `json:"trustWindow"`
}

// ExpiresAt is the first instant at which the record is no longer valid.
func (r *ConsentRecord) ExpiresAt() time.Time {
	return r.GrantedAt.Add(r.TrustWindow)
}

// IsValidAt reports whether the record is still inside its trust window.
func (r *ConsentRecord) IsValidAt(now time.Time) bool {
	return now.Before(r.ExpiresAt())
}

// LocalConsent is the consent copy the browser keeps for itself. It is
// unverified and only trusted for LocalTrustWindow.
type LocalConsent struct {
	Consent   bool   `json:"consent"`
	Timestamp string `json:"timestamp"`
	Name      string `json:"name,omitempty"`
	Company   string `json:"company,omitempty"`
	Email     string `json:"email,omitempty"`
}

// GrantedAt parses Timestamp. The boolean is false for a missing or malformed value.
func (l *LocalConsent) GrantedAt() (time.Time, bool) {
	ts := strings.TrimSpace(l.Timestamp)
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsValidAt reports whether the cached consent is affirmative and younger than
// LocalTrustWindow.
func (l *LocalConsent) IsValidAt(now time.Time) bool {
	if l == nil || !l.Consent {
		return false
	}
	granted, ok := l.GrantedAt()
	if !ok || granted.After(now.Add(LocalClockSkew)) {
		return false
	}
	return now.Sub(granted) < LocalTrustWindow
}

// Decision is the outcome of resolving one visitor touch.
type Decision struct {
	HasConsent bool
	Source     TrustSource
	Record     *ConsentRecord // set for session and address decisions
	Local      *LocalConsent  // set for local decisions
}

// NoConsent is the fail-open decision.
func NoConsent() Decision {
	return Decision{}
}
