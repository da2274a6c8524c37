package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portfolio/internal/contact/handler/mocks"
	contactService "portfolio/internal/contact/service"
	"portfolio/internal/notify"
	"portfolio/internal/validator"
	dErrors "portfolio/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/contact-mocks.go -package=mocks Service

func newHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	return New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))), svc
}

func postJSON(t *testing.T, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/send-email", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

var contactBody = map[string]string{
	"name":    "Grace",
	"email":   "grace@example.com",
	"subject": "Hello",
	"message": "Let's talk.",
	"phone":   "+1 555 0100",
}

func TestHandleSendEmail(t *testing.T) {
	t.Run("success with preview", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Submit(gomock.Any(), validator.ContactInput{
			Name:    "Grace",
			Email:   "grace@example.com",
			Subject: "Hello",
			Message: "Let's talk.",
			Phone:   "+1 555 0100",
		}).Return(notify.Receipt{MessageID: "m-1", PreviewURL: "http://localhost:8080/dev/mail/m-1"}, nil)

		w := httptest.NewRecorder()
		h.HandleSendEmail(w, postJSON(t, contactBody))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"Email sent successfully","previewUrl":"http://localhost:8080/dev/mail/m-1"}`, w.Body.String())
	})

	t.Run("success over smtp omits preview", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(notify.Receipt{MessageID: "m-1"}, nil)

		w := httptest.NewRecorder()
		h.HandleSendEmail(w, postJSON(t, contactBody))

		assert.JSONEq(t, `{"success":true,"message":"Email sent successfully"}`, w.Body.String())
	})

	t.Run("validation failure", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(notify.Receipt{}, dErrors.New(dErrors.CodeProhibited, "Message contains prohibited content"))

		w := httptest.NewRecorder()
		h.HandleSendEmail(w, postJSON(t, contactBody))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"message":"Message contains prohibited content"`)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("transport failure", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(notify.Receipt{}, dErrors.Wrap(errors.New("smtp: 535"), dErrors.CodeDeliveryFailed, "Failed to send email"))

		w := httptest.NewRecorder()
		h.HandleSendEmail(w, postJSON(t, contactBody))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to send email")
		assert.NotContains(t, w.Body.String(), "535")
	})

	t.Run("malformed json never reaches the service", func(t *testing.T) {
		h, _ := newHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/send-email", strings.NewReader(`{"name":`))

		w := httptest.NewRecorder()
		h.HandleSendEmail(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// The handler and the real service together against the sandbox transport.
func TestHandleSendEmailSandbox(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sandbox := notify.NewSandboxTransport("http://localhost:8080", 10)
	dispatcher := notify.NewDispatcher(sandbox, notify.Addresses{
		From:      "site@example.com",
		ContactTo: "owner@example.com",
		VisitorTo: "owner@example.com",
	}, logger)
	h := New(contactService.New(dispatcher, logger), logger)

	t.Run("delivers and returns a preview", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleSendEmail(w, postJSON(t, contactBody))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			PreviewURL string `json:"previewUrl"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp.PreviewURL, "http://localhost:8080/dev/mail/"))

		stored := sandbox.List()
		require.Len(t, stored, 1)
		assert.Equal(t, "Portfolio Contact: Hello", stored[0].Message.Subject)
		assert.Equal(t, "grace@example.com", stored[0].Message.ReplyTo)
	})

	t.Run("spam is not sent", func(t *testing.T) {
		body := map[string]string{}
		for k, v := range contactBody {
			body[k] = v
		}
		body["message"] = "You are a lottery winner"

		w := httptest.NewRecorder()
		h.HandleSendEmail(w, postJSON(t, body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, sandbox.List(), 1)
	})
}
