package email

import (
	"bufio"
	"context"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type smtpServer struct {
	listener net.Listener
	silent   bool

	mu   sync.Mutex
	data []string
}

func startSMTPServer(t *testing.T, silent bool) *smtpServer {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &smtpServer{listener: lis, silent: silent}
	t.Cleanup(func() { lis.Close() })
	go s.serve()
	return s
}

func (s *smtpServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *smtpServer) handle(conn net.Conn) {
	defer conn.Close()
	if s.silent {
		_, _ = bufio.NewReader(conn).ReadString('\n')
		return
	}

	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 test ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		switch cmd := strings.ToUpper(strings.Fields(line + " x")[0]); cmd {
		case "EHLO", "HELO":
			_ = tp.PrintfLine("250 test")
		case "DATA":
			_ = tp.PrintfLine("354 go ahead")
			body, err := tp.ReadDotLines()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.data = append(s.data, strings.Join(body, "\n"))
			s.mu.Unlock()
			_ = tp.PrintfLine("250 queued")
		case "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("250 OK")
		}
	}
}

func (s *smtpServer) dialer() *smtpDialer {
	addr := s.listener.Addr().(*net.TCPAddr)
	return &smtpDialer{host: "127.0.0.1", port: addr.Port}
}

func testMessage() *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", "noreply@airline.test")
	m.SetHeader("To", "alice@example.com")
	m.SetHeader("Subject", "Booking confirmed")
	m.SetBody("text/plain", "see you on board")
	return m
}

func TestSMTPDialer_DialAndSend(t *testing.T) {
	server := startSMTPServer(t, false)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := server.dialer().DialAndSend(ctx, testMessage())

	require.NoError(t, err)
	server.mu.Lock()
	defer server.mu.Unlock()
	require.Len(t, server.data, 1)
	assert.Contains(t, server.data[0], "Subject: Booking confirmed")
	assert.Contains(t, server.data[0], "see you on board")
}

func TestSMTPDialer_DialAndSend_UnresponsiveServerIsCut(t *testing.T) {
	server := startSMTPServer(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := server.dialer().DialAndSend(ctx, testMessage())

	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, FailureConnectivity, Classify(err))
}

func TestSender_Send_OverSMTPTimesOut(t *testing.T) {
	server := startSMTPServer(t, true)
	sender := newSender(server.dialer(), "noreply@airline.test", 50*time.Millisecond)

	err := sender.Send(context.Background(), Message{To: "alice@example.com", Subject: "s", Body: "b"})

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, FailureConnectivity, sendErr.Class)
}

func TestSMTPDialer_DialAndSend_Refused(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	lis.Close()

	d := &smtpDialer{host: "127.0.0.1", port: port}
	err = d.DialAndSend(context.Background(), testMessage())

	require.Error(t, err)
	assert.Equal(t, FailureConnectivity, Classify(err))
}
