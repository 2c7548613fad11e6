package model

import "errors"

// DigestSubject is the subject line of every digest email.
const DigestSubject = "Daily Update"

// Digest is the composed notification for a single run.
type Digest struct {
	Subject string
	Body    string
}

// Section is the result of one fetch stage: either text to include in the
// digest or the error that replaced it.
type Section struct {
	Text string
	Err  error
}

// Ready returns a successful section.
func Ready(text string) Section { return Section{Text: text} }

// Failed returns a section carrying a recovered failure.
func Failed(err error) Section { return Section{Err: err} }

// OK reports whether the section holds content rather than a failure.
func (s Section) OK() bool { return s.Err == nil }

// FetchError wraps a transport, status or decode failure from an upstream API.
// The pipeline substitutes it into the digest instead of aborting the run.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is (or wraps) a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
