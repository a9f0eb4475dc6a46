package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strings"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"gopkg.in/gomail.v2"
)

type FailureClass string

const (
	FailureAuth         FailureClass = "auth"
	FailureConnectivity FailureClass = "connectivity"
	FailureUnclassified FailureClass = "unclassified"
)

var ErrEmptyRecipient = errors.New("recipient email is empty")

// SendError carries the failure class of a rejected send next to the transport error.
type SendError struct {
	Class FailureClass
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Class, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

type Message struct {
	To      string
	Subject string
	Body    string
}

type dialer interface {
	DialAndSend(ctx context.Context, messages ...*gomail.Message) error
}

type Sender struct {
	dialer  dialer
	from    string
	timeout time.Duration
}

func NewSender(cfg config.MailConfig) *Sender {
	d := &smtpDialer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
	}
	return newSender(d, cfg.From, cfg.Timeout())
}

func newSender(d dialer, from string, timeout time.Duration) *Sender {
	return &Sender{dialer: d, from: from, timeout: timeout}
}

// Send delivers a plain-text message within the configured timeout. A send that runs
// out of time is aborted, not left running. Every failure is returned as *SendError.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return &SendError{Class: FailureUnclassified, Err: ErrEmptyRecipient}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.dialer.DialAndSend(ctx, m); err != nil {
		if ctx.Err() != nil {
			return &SendError{Class: FailureConnectivity, Err: errors.Join(ctx.Err(), err)}
		}
		return &SendError{Class: Classify(err), Err: err}
	}
	return nil
}

// Classify maps an SMTP or network error onto a FailureClass.
func Classify(err error) FailureClass {
	if err == nil {
		return ""
	}

	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Class
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			return FailureAuth
		}
		return FailureUnclassified
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) {
		return FailureConnectivity
	}

	if strings.Contains(strings.ToLower(err.Error()), "auth") {
		return FailureAuth
	}
	return FailureUnclassified
}
