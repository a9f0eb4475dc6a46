package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	err     error
	block   bool
	aborted bool
	sent    []*gomail.Message
}

func (f *fakeDialer) DialAndSend(ctx context.Context, messages ...*gomail.Message) error {
	if f.block {
		<-ctx.Done()
		f.aborted = true
		return &net.OpError{Op: "read", Net: "tcp", Err: errors.New("i/o timeout")}
	}
	f.sent = append(f.sent, messages...)
	return f.err
}

func TestSender_Send_Success(t *testing.T) {
	d := &fakeDialer{}
	sender := newSender(d, "noreply@airline.test", time.Second)

	err := sender.Send(context.Background(), Message{To: "alice@example.com", Subject: "hi", Body: "body"})

	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"alice@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"noreply@airline.test"}, d.sent[0].GetHeader("From"))
	assert.Equal(t, []string{"hi"}, d.sent[0].GetHeader("Subject"))
}

func TestSender_Send_EmptyRecipient(t *testing.T) {
	d := &fakeDialer{}
	sender := newSender(d, "noreply@airline.test", time.Second)

	err := sender.Send(context.Background(), Message{To: "  ", Subject: "hi"})

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, FailureUnclassified, sendErr.Class)
	assert.ErrorIs(t, err, ErrEmptyRecipient)
	assert.Empty(t, d.sent)
}

func TestSender_Send_AuthFailure(t *testing.T) {
	d := &fakeDialer{err: &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}}
	sender := newSender(d, "noreply@airline.test", time.Second)

	err := sender.Send(context.Background(), Message{To: "alice@example.com"})

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, FailureAuth, sendErr.Class)
}

func TestSender_Send_TimeoutAbortsSession(t *testing.T) {
	d := &fakeDialer{block: true}
	sender := newSender(d, "noreply@airline.test", 10*time.Millisecond)

	err := sender.Send(context.Background(), Message{To: "alice@example.com"})

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, FailureConnectivity, sendErr.Class)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, d.aborted)
	assert.Empty(t, d.sent)
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected FailureClass
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "auth required", err: &textproto.Error{Code: 530, Msg: "auth required"}, expected: FailureAuth},
		{name: "mailbox unavailable", err: &textproto.Error{Code: 550, Msg: "no such user"}, expected: FailureUnclassified},
		{name: "connection refused", err: fmt.Errorf("dial: %w", syscall.ECONNREFUSED), expected: FailureConnectivity},
		{name: "net op error", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("no route to host")}, expected: FailureConnectivity},
		{name: "eof", err: io.EOF, expected: FailureConnectivity},
		{name: "deadline", err: context.DeadlineExceeded, expected: FailureConnectivity},
		{name: "unsupported auth text", err: errors.New("gomail: unsupported AUTH mechanism"), expected: FailureAuth},
		{name: "other", err: errors.New("something odd"), expected: FailureUnclassified},
		{name: "already classified", err: &SendError{Class: FailureAuth, Err: errors.New("x")}, expected: FailureAuth},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.err))
		})
	}
}
