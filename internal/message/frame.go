package message

import (
	"bytes"
	"strings"
)

// Format builds the broadcast frame "[addr] text\n".
func Format(addr, text string) []byte {
	b := make([]byte, 0, len(addr)+len(text)+4)
	b = append(b, '[')
	b = append(b, addr...)
	b = append(b, "] "...)
	b = append(b, text...)
	b = append(b, '\n')
	return b
}

// Parse splits a frame (with or without its trailing newline) into the
// sender address and the message text.
func Parse(frame string) (addr, text string, ok bool) {
	frame = strings.TrimSuffix(frame, "\n")
	if !strings.HasPrefix(frame, "[") {
		return "", "", false
	}
	end := strings.Index(frame, "] ")
	if end < 0 {
		return "", "", false
	}
	return frame[1:end], frame[end+2:], true
}

// Reassembler collects raw bytes read from a relay connection and hands
// back complete frames.  The zero value is ready to use.  It is not safe
// for concurrent use.
type Reassembler struct {
	buf bytes.Buffer
}

// Write appends p to the pending bytes.  It never fails.
func (r *Reassembler) Write(p []byte) (int, error) {
	return r.buf.Write(p)
}

// Next returns the next complete frame without its trailing newline.
// ok is false when no full frame is buffered yet.
func (r *Reassembler) Next() (frame string, ok bool) {
	i := bytes.IndexByte(r.buf.Bytes(), '\n')
	if i < 0 {
		return "", false
	}
	line := r.buf.Next(i + 1)
	return string(line[:i]), true
}

// Frames drains every complete frame currently buffered.
func (r *Reassembler) Frames() []string {
	var out []string
	for {
		f, ok := r.Next()
		if !ok {
			return out
		}
		out = append(out, f)
	}
}

// Pending returns the number of buffered bytes that do not yet form a
// complete frame.
func (r *Reassembler) Pending() int { return r.buf.Len() }

// Rest drains and returns the incomplete tail, if any.
func (r *Reassembler) Rest() string {
	s := r.buf.String()
	r.buf.Reset()
	return s
}
