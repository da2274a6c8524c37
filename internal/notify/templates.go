package notify

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

var funcs = map[string]any{
	"orDefault": func(v string) string {
		if strings.TrimSpace(v) == "" {
			return "Not provided"
		}
		return v
	},
	"lines": func(v string) []string {
		return strings.Split(v, "\n")
	},
}

var contactText = texttemplate.Must(texttemplate.New("contact.txt").Funcs(funcs).Parse(`Name: {{.Name}}
Email: {{.Email}}
Company: {{orDefault .Company}}
Phone: {{orDefault .Phone}}
Subject: {{.Subject}}

Message:
{{.Message}}
`))

var contactHTML = htmltemplate.Must(htmltemplate.New("contact.html").Funcs(funcs).Parse(`<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Company:</strong> {{orDefault .Company}}</p>
<p><strong>Phone:</strong> {{orDefault .Phone}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<br>
<p><strong>Message:</strong></p>
<p>{{range $i, $line := lines .Message}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
`))

var visitorText = texttemplate.Must(texttemplate.New("visitor.txt").Funcs(funcs).Parse(`New Website Visitor Notification

Visitor Details:
- Name: {{.Name}}
- Company/Organization: {{.Company}}
- Email: {{.Email}}
- Visit Date: {{.VisitedAt.Format "2006-01-02 15:04:05 MST"}}
- Network: {{orDefault .AddressPrefix}}
- Device: {{.Device.OS}} {{.Device.DeviceClass}}{{if .Device.Browser}} ({{.Device.Browser}}){{end}}
- User Agent: {{orDefault .UserAgent}}

This notification was sent automatically when someone registered on the portfolio website.
`))

var visitorHTML = htmltemplate.Must(htmltemplate.New("visitor.html").Funcs(funcs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="font-size: 24px;">New Website Visitor</h1>
  <h2>Visitor Details:</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Company/Organization:</strong> {{.Company}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Visit Date:</strong> {{.VisitedAt.Format "2006-01-02 15:04:05 MST"}}</p>
  <p><strong>Network:</strong> {{orDefault .AddressPrefix}}</p>
  <p><strong>Device:</strong> {{.Device.OS}} {{.Device.DeviceClass}}{{if .Device.Browser}} ({{.Device.Browser}}){{end}}</p>
  <p><strong>User Agent:</strong> <span style="font-size: 12px; word-break: break-all;">{{orDefault .UserAgent}}</span></p>
  <p style="color: #666; font-size: 12px;">This notification was sent automatically when someone registered on the portfolio website.</p>
</div>
`))

func render(text *texttemplate.Template, html *htmltemplate.Template, data any) (string, string, error) {
	var tb, hb strings.Builder
	if err := text.Execute(&tb, data); err != nil {
		return "", "", err
	}
	if err := html.Execute(&hb, data); err != nil {
		return "", "", err
	}
	return tb.String(), hb.String(), nil
}
