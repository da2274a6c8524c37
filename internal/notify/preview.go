package notify

import (
	htmltemplate "html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "portfolio/pkg/domain-errors"
	"portfolio/pkg/platform/httputil"
)

var previewPage = htmltemplate.Must(htmltemplate.New("preview.html").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Message.Subject}}</title></head>
<body>
<p><strong>From:</strong> {{.Message.From}}<br>
<strong>To:</strong> {{.Message.To}}<br>
{{if .Message.ReplyTo}}<strong>Reply-To:</strong> {{.Message.ReplyTo}}<br>{{end}}
<strong>Subject:</strong> {{.Message.Subject}}</p>
<hr>
{{.Body}}
<hr>
<pre>{{.Message.Text}}</pre>
</body></html>
`))

// PreviewHandler serves the messages captured by a SandboxTransport.
type PreviewHandler struct {
	sandbox *SandboxTransport
	logger  *slog.Logger
}

func NewPreviewHandler(sandbox *SandboxTransport, logger *slog.Logger) *PreviewHandler {
	return &PreviewHandler{sandbox: sandbox, logger: logger}
}

// Register mounts the preview route. Messages are only reachable by their
// unguessable id; there is no index.
func (h *PreviewHandler) Register(r chi.Router) {
	r.Get("/dev/mail/{id}", h.handleGet)
}

func (h *PreviewHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	m, ok := h.sandbox.Get(chi.URLParam(r, "id"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Message not found"))
		return
	}

	// The HTML body was produced by html/template and is already escaped.
	data := struct {
		Message Message
		Body    htmltemplate.HTML
	}{Message: m.Message, Body: htmltemplate.HTML(m.Message.HTML)} //nolint:gosec // rendered by html/template

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// email bodies carry inline styles
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	if err := previewPage.Execute(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render mail preview", "error", err)
	}
}
