package event

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"ticket-rush/model"
	"ticket-rush/outbound/sqlgen"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type capturingSender struct {
	to      []string
	subject string
	body    string
	sends   int
	err     error
}

func (c *capturingSender) Send(to []string, subject string, body string) error {
	c.sends++
	if c.err != nil {
		return c.err
	}

	c.to = to
	c.subject = subject
	c.body = body
	return nil
}

type NotificationEventTestSuite struct {
	suite.Suite

	PgxMock pgxmock.PgxPoolIface
	Sender  *capturingSender
	Event   NotificationEvent
}

func (s *NotificationEventTestSuite) SetupTest() {
	pool, err := pgxmock.NewPool()
	if err != nil {
		s.T().Fatalf("failed to create pgxmock pool: %v", err)
	}

	s.PgxMock = pool
	s.Sender = &capturingSender{}
	s.Event = NotificationEvent{
		Querier:        sqlgen.New(pool),
		Email:          s.Sender,
		PriceFormatter: message.NewPrinter(language.English),
		Timeout:        5 * time.Second,
	}
}

func (s *NotificationEventTestSuite) TearDownTest() {
	s.PgxMock.Close()
}

func TestNotificationEventTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationEventTestSuite))
}

func (s *NotificationEventTestSuite) envelope(n model.Notification) []byte {
	envelope, err := model.WrapNotification(n)
	s.Require().NoError(err)

	msg, err := json.Marshal(envelope)
	s.Require().NoError(err)

	return msg
}

func (s *NotificationEventTestSuite) expectEmailLookup(email string) {
	s.PgxMock.ExpectQuery(`SELECT email FROM registrations`).
		WithArgs(int64(1), int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"email"}).AddRow(email))
}

func (s *NotificationEventTestSuite) TestSendHandlerDropsMalformedEnvelope() {
	err := s.Event.SendHandler(context.Background(), []byte(`{not json`))
	s.NoError(err, "a malformed envelope must not be redelivered")
	s.Zero(s.Sender.sends)

	s.NoError(s.PgxMock.ExpectationsWereMet())
}

func (s *NotificationEventTestSuite) TestSendHandlerDropsUnknownKind() {
	msg := []byte(`{"kind": "seat_upgraded", "payload": {}}`)

	err := s.Event.SendHandler(context.Background(), msg)
	s.NoError(err)
	s.Zero(s.Sender.sends)

	s.NoError(s.PgxMock.ExpectationsWereMet())
}

func (s *NotificationEventTestSuite) TestSendHandlerDropsUnknownRecipient() {
	s.PgxMock.ExpectQuery(`SELECT email FROM registrations`).
		WithArgs(int64(1), int64(10)).
		WillReturnError(pgx.ErrNoRows)

	msg := s.envelope(model.QueueExpiredNotification{EventID: 1, UserID: 10})

	err := s.Event.SendHandler(context.Background(), msg)
	s.NoError(err)
	s.Zero(s.Sender.sends)

	s.NoError(s.PgxMock.ExpectationsWereMet())
}

func (s *NotificationEventTestSuite) TestSendHandlerQueueEntered() {
	s.expectEmailLookup("john@example.com")

	expiresAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	msg := s.envelope(model.QueueEnteredNotification{
		EventID: 1, UserID: 10, Rank: 7, ExpiresAt: expiresAt,
	})

	err := s.Event.SendHandler(context.Background(), msg)
	s.NoError(err)

	s.Equal([]string{"john@example.com"}, s.Sender.to)
	s.Equal("Your Purchase Window Is Open", s.Sender.subject)
	s.Contains(s.Sender.body, "event #1")
	s.Contains(s.Sender.body, expiresAt.Format(time.RFC1123))

	s.NoError(s.PgxMock.ExpectationsWereMet())
}

func (s *NotificationEventTestSuite) TestSendHandlerPaymentSuccessFormatsAmount() {
	s.expectEmailLookup("john@example.com")

	msg := s.envelope(model.PaymentSuccessNotification{
		EventID: 1, UserID: 10, TicketID: "01J0000000000000000000TICK", Amount: 125000,
	})

	err := s.Event.SendHandler(context.Background(), msg)
	s.NoError(err)

	s.Equal("Payment Confirmation", s.Sender.subject)
	s.Contains(s.Sender.body, "$125,000")
	s.Contains(s.Sender.body, "01J0000000000000000000TICK")

	s.NoError(s.PgxMock.ExpectationsWereMet())
}

func (s *NotificationEventTestSuite) TestSendHandlerPropagatesSendError() {
	s.expectEmailLookup("john@example.com")
	s.Sender.err = fmt.Errorf("smtp unreachable")

	msg := s.envelope(model.QueueWaitingNotification{EventID: 1, UserID: 10, Rank: 3})

	err := s.Event.SendHandler(context.Background(), msg)
	s.Error(err, "delivery failures must surface so the message is redelivered")

	s.NoError(s.PgxMock.ExpectationsWereMet())
}
