package models

import "time"

// ConsentData is the consent summary returned to the browser.
type ConsentData struct {
	Consent   bool   `json:"consent"`
	Name      string `json:"name,omitempty"`
	Company   string `json:"company,omitempty"`
	Email     string `json:"email,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// CheckConsentResponse is the body of a /check-consent reply.
type CheckConsentResponse struct {
	HasConsent     bool         `json:"hasConsent"`
	ConsentData    *ConsentData `json:"consentData,omitempty"`
	TrackingMethod TrustSource  `json:"trackingMethod,omitempty"`
}

// RegisterVisitorResponse is the body of a /visitor-consent reply.
type RegisterVisitorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ToCheckConsentResponse renders a decision for the wire.
func ToCheckConsentResponse(d Decision) *CheckConsentResponse {
	if !d.HasConsent {
		return &CheckConsentResponse{HasConsent: false}
	}
	resp := &CheckConsentResponse{HasConsent: true, TrackingMethod: d.Source}
	switch {
	case d.Record != nil:
		resp.ConsentData = &ConsentData{
			Consent:   true,
			Name:      d.Record.Name,
			Company:   d.Record.Company,
			Email:     d.Record.Email,
			Timestamp: d.Record.GrantedAt.UTC().Format(time.RFC3339),
		}
	case d.Local != nil:
		resp.ConsentData = &ConsentData{
			Consent:   true,
			Name:      d.Local.Name,
			Company:   d.Local.Company,
			Email:     d.Local.Email,
			Timestamp: d.Local.Timestamp,
		}
	}
	return resp
}
