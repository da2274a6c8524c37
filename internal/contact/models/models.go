// Package models holds the wire types of the contact form endpoint.
package models

import "portfolio/internal/validator"

const SentMessage = "Email sent successfully"

// SendEmailRequest is the contact form body. Field checks happen in the
// service so rejected submissions are audited.
type SendEmailRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// ToInput converts the wire body into validator input.
func (r *SendEmailRequest) ToInput() validator.ContactInput {
	return validator.ContactInput{
		Name:    r.Name,
		Email:   r.Email,
		Subject: r.Subject,
		Message: r.Message,
		Company: r.Company,
		Phone:   r.Phone,
	}
}

type SendEmailResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	PreviewURL string `json:"previewUrl,omitempty"`
}
