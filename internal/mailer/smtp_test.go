package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"daily-digest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP is a single-session plaintext SMTP server for tests.
type fakeSMTP struct {
	ln         net.Listener
	rejectAuth bool

	mu    sync.Mutex
	auth  string
	from  string
	rcpt  []string
	data  string
	done  chan struct{}
	steps []string
}

func startFakeSMTP(t *testing.T, rejectAuth bool) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeSMTP{ln: ln, rejectAuth: rejectAuth, done: make(chan struct{})}
	t.Cleanup(func() { ln.Close() })
	go f.serve()
	return f
}

func (f *fakeSMTP) port() int { return f.ln.Addr().(*net.TCPAddr).Port }

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 localhost ESMTP fake")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		f.mu.Lock()
		f.steps = append(f.steps, verb)
		f.mu.Unlock()
		switch verb {
		case "EHLO":
			_ = tp.PrintfLine("250-localhost")
			_ = tp.PrintfLine("250 AUTH PLAIN")
		case "AUTH":
			parts := strings.Fields(line)
			if len(parts) == 3 {
				raw, _ := base64.StdEncoding.DecodeString(parts[2])
				f.mu.Lock()
				f.auth = string(raw)
				f.mu.Unlock()
			}
			if f.rejectAuth {
				_ = tp.PrintfLine("535 5.7.8 Username and Password not accepted")
				continue
			}
			_ = tp.PrintfLine("235 2.7.0 Accepted")
		case "MAIL":
			f.mu.Lock()
			f.from = line
			f.mu.Unlock()
			_ = tp.PrintfLine("250 OK")
		case "RCPT":
			f.mu.Lock()
			f.rcpt = append(f.rcpt, line)
			f.mu.Unlock()
			_ = tp.PrintfLine("250 OK")
		case "DATA":
			_ = tp.PrintfLine("354 Go ahead")
			b, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.data = string(b)
			f.mu.Unlock()
			_ = tp.PrintfLine("250 OK queued")
		case "QUIT":
			_ = tp.PrintfLine("221 Bye")
			return
		default:
			_ = tp.PrintfLine("502 Command not implemented")
		}
	}
}

func plainSender(f *fakeSMTP) *SMTPSender {
	s := NewSMTP(Config{
		Host:      "127.0.0.1",
		Port:      f.port(),
		Sender:    "me@example.com",
		Password:  "app-pass",
		Recipient: "you@example.com",
		Timeout:   5 * time.Second,
	})
	s.dial = (&net.Dialer{}).DialContext
	s.now = func() time.Time { return time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC) }
	return s
}

func TestSendDeliversMessage(t *testing.T) {
	f := startFakeSMTP(t, false)
	s := plainSender(f)

	err := s.Send(context.Background(), model.Digest{Subject: "Daily Update", Body: "Weather Update:\nsunny\n\nNews Update:\nquiet"})
	require.NoError(t, err)
	<-f.done

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, "\x00me@example.com\x00app-pass", f.auth)
	assert.True(t, strings.HasPrefix(f.from, "MAIL FROM:<me@example.com>"), f.from)
	require.Len(t, f.rcpt, 1)
	assert.Equal(t, "RCPT TO:<you@example.com>", f.rcpt[0])
	assert.Contains(t, f.data, "From: me@example.com\n")
	assert.Contains(t, f.data, "To: you@example.com\n")
	assert.Contains(t, f.data, "Subject: Daily Update\n")
	assert.Contains(t, f.data, "Content-Type: text/plain; charset=\"utf-8\"\n")
	assert.True(t, strings.HasSuffix(f.data, "\n\nWeather Update:\nsunny\n\nNews Update:\nquiet\n"), "body: %q", f.data)
	assert.Equal(t, "QUIT", f.steps[len(f.steps)-1])
}

func TestSendAuthFailure(t *testing.T) {
	f := startFakeSMTP(t, true)
	s := plainSender(f)

	err := s.Send(context.Background(), model.Digest{Subject: "Daily Update", Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp: auth")
}

func TestSendDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	s := NewSMTP(Config{Host: "127.0.0.1", Port: port, Timeout: time.Second})
	s.dial = (&net.Dialer{}).DialContext

	err = s.Send(context.Background(), model.Digest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp: dial")
}

func TestMessage(t *testing.T) {
	date := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	msg := string(Message("a@example.com", "b@example.com", model.Digest{Subject: "Daily Update", Body: "line1\nline2"}, date))

	assert.Equal(t, "From: a@example.com\r\n"+
		"To: b@example.com\r\n"+
		"Subject: Daily Update\r\n"+
		"Date: Sat, 01 Jun 2024 07:00:00 +0000\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
		"Content-Transfer-Encoding: 8bit\r\n"+
		"\r\n"+
		"line1\r\nline2", msg)
}

func TestMessageEncodesNonASCIISubject(t *testing.T) {
	msg := string(Message("a", "b", model.Digest{Subject: "Tägliches Update"}, time.Now()))
	assert.Contains(t, msg, "Subject: =?utf-8?q?")
}

func TestWriterSender(t *testing.T) {
	var buf bytes.Buffer
	s := &WriterSender{W: &buf, From: "a@example.com", Recipient: "b@example.com"}

	require.NoError(t, s.Send(context.Background(), model.Digest{Subject: "Daily Update", Body: "hello"}))
	assert.Contains(t, buf.String(), "Subject: Daily Update\r\n")
	assert.Contains(t, buf.String(), "\r\n\r\nhello\r\n")
}
