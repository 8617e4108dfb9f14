package cli

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// serialMock is an in-memory Transport. Reads drain the queued input and
// then report ErrNoData; writes are captured for inspection. Failures can
// be injected on either side.
type serialMock struct {
	input  []byte
	output bytes.Buffer

	// readErr, when set, is returned by the next ReadByte instead of data.
	readErr error

	// writeLimit, when non-negative, is the number of bytes that may still
	// be written before every write fails with errBrokenPipe.
	writeLimit int
}

var errBrokenPipe = errors.New("broken pipe")

func newSerialMock(t *testing.T, input string) *serialMock {
	t.Helper()
	return &serialMock{input: []byte(input), writeLimit: -1}
}

func (m *serialMock) feed(input string) {
	m.input = append(m.input, input...)
}

func (m *serialMock) ReadByte() (byte, error) {
	if m.readErr != nil {
		err := m.readErr
		m.readErr = nil
		return 0, err
	}
	if len(m.input) == 0 {
		return 0, ErrNoData
	}
	b := m.input[0]
	m.input = m.input[1:]
	return b, nil
}

func (m *serialMock) WriteByte(c byte) error {
	if !m.reserve(1) {
		return errBrokenPipe
	}
	return m.output.WriteByte(c)
}

func (m *serialMock) Write(p []byte) (int, error) {
	if !m.reserve(len(p)) {
		return 0, errBrokenPipe
	}
	return m.output.Write(p)
}

func (m *serialMock) reserve(n int) bool {
	if m.writeLimit < 0 {
		return true
	}
	if n > m.writeLimit {
		m.writeLimit = 0
		return false
	}
	m.writeLimit -= n
	return true
}

// takeOutput returns everything written so far and resets the capture.
func (m *serialMock) takeOutput() string {
	out := m.output.String()
	m.output.Reset()
	return out
}

// printer returns a handler that writes text and succeeds, mirroring the
// callbacks registered by the firmware examples.
func printer(text string) Handler {
	return HandlerFunc(func(w io.Writer) (ReturnCode, error) {
		if err := Print(w, text); err != nil {
			return 0, err
		}
		return Success, nil
	})
}
