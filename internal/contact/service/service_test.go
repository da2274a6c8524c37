package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"portfolio/internal/audit"
	"portfolio/internal/contact/service/mocks"
	"portfolio/internal/notify"
	"portfolio/internal/validator"
	dErrors "portfolio/pkg/domain-errors"
	"portfolio/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Sender,AuditPublisher

type ContactServiceSuite struct {
	suite.Suite
	sender  *mocks.MockSender
	auditor *mocks.MockAuditPublisher
	service *Service
	ctx     context.Context
}

func TestContactServiceSuite(t *testing.T) {
	suite.Run(t, new(ContactServiceSuite))
}

func (s *ContactServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.sender = mocks.NewMockSender(ctrl)
	s.auditor = mocks.NewMockAuditPublisher(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.sender, logger, WithAuditPublisher(s.auditor))
	s.ctx = requestcontext.WithClientMetadata(context.Background(), "10.0.0.7", "test-agent")
}

func validInput() validator.ContactInput {
	return validator.ContactInput{
		Name:    "  Grace Hopper ",
		Email:   "Grace@Example.com",
		Subject: "Hello",
		Message: "I would like to talk about compilers.",
	}
}

func (s *ContactServiceSuite) expectAudit(action string) {
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(action, e.Action)
		s.Equal("10.0.0.0/24", e.IPPrefix)
		return nil
	})
}

func (s *ContactServiceSuite) TestSubmitSendsNormalizedMessage() {
	s.sender.EXPECT().SendContact(gomock.Any(), validator.ValidatedContactMessage{
		Name:    "Grace Hopper",
		Email:   "grace@example.com",
		Subject: "Hello",
		Message: "I would like to talk about compilers.",
	}).Return(notify.Receipt{MessageID: "m-1", PreviewURL: "http://localhost/dev/mail/m-1"}, nil)
	s.expectAudit(audit.ActionContactSubmitted)

	receipt, err := s.service.Submit(s.ctx, validInput())

	s.Require().NoError(err)
	s.Equal("http://localhost/dev/mail/m-1", receipt.PreviewURL)
}

func (s *ContactServiceSuite) TestSubmitRejectsSpamWithoutSending() {
	in := validInput()
	in.Message = "Buy VIAGRA now"
	s.expectAudit(audit.ActionContactRejected)

	_, err := s.service.Submit(s.ctx, in)

	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeProhibited))
	de, ok := dErrors.As(err)
	s.Require().True(ok)
	s.Equal("Message contains prohibited content", de.Message)
}

func (s *ContactServiceSuite) TestSubmitRejectsMarkup() {
	in := validInput()
	in.Subject = "<script>alert(1)</script>"
	s.expectAudit(audit.ActionContactRejected)

	_, err := s.service.Submit(s.ctx, in)

	s.True(dErrors.Is(err, dErrors.CodeSuspiciousInput))
}

func (s *ContactServiceSuite) TestSubmitMissingFields() {
	s.expectAudit(audit.ActionContactRejected)

	_, err := s.service.Submit(s.ctx, validator.ContactInput{Name: "x"})

	s.True(dErrors.Is(err, dErrors.CodeValidation))
}

func (s *ContactServiceSuite) TestSubmitTransportFailure() {
	s.sender.EXPECT().SendContact(gomock.Any(), gomock.Any()).Return(notify.Receipt{}, errors.New("dial tcp: refused"))
	s.expectAudit(audit.ActionNotificationFailed)

	_, err := s.service.Submit(s.ctx, validInput())

	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeDeliveryFailed))
	s.Equal(500, dErrors.ToHTTPStatus(dErrors.CodeDeliveryFailed))
}

func (s *ContactServiceSuite) TestSubmitWithoutAuditor() {
	svc := New(s.sender, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.sender.EXPECT().SendContact(gomock.Any(), gomock.Any()).Return(notify.Receipt{MessageID: "m-2"}, nil)

	receipt, err := svc.Submit(s.ctx, validInput())

	s.Require().NoError(err)
	s.Equal("m-2", receipt.MessageID)
}
