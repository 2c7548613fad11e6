package mailer

import (
	"context"
	"io"
	"time"

	"daily-digest/internal/model"
)

// WriterSender prints digests instead of mailing them. Used by `run --dry-run`.
type WriterSender struct {
	W         io.Writer
	From      string
	Recipient string
}

func (s *WriterSender) Send(_ context.Context, d model.Digest) error {
	_, err := s.W.Write(Message(s.From, s.Recipient, d, time.Now()))
	if err != nil {
		return err
	}
	_, err = io.WriteString(s.W, "\r\n")
	return err
}
