package util

import (
	"bytes"
	"io"
	"testing"
)

// BenchmarkBufPool measures the allocation advantage of sync.Pool
// buffer reuse versus fresh allocation.
func BenchmarkBufPool(b *testing.B) {
	p := NewBufPool(DefaultBufSize)
	b.Run("pool", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := p.Get()
			_ = (*buf)[0]
			p.Put(buf)
		}
	})
	b.Run("alloc", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := make([]byte, DefaultBufSize)
			_ = buf[0]
		}
	})
}

// BenchmarkLogger_Filtered measures the cost of a log call that is
// below the configured verbosity, which is the hot path in sessions.
func BenchmarkLogger_Filtered(b *testing.B) {
	l := NewLogger(1)
	l.SetOutput(io.Discard)
	for i := 0; i < b.N; i++ {
		l.Debug("frame from %s: %d bytes", "127.0.0.1:5000", 42)
	}
}

// BenchmarkLogger_Emitted measures a log call that is written out.
func BenchmarkLogger_Emitted(b *testing.B) {
	var buf bytes.Buffer
	l := NewLogger(1)
	l.SetOutput(&buf)
	l.SetTimestamps(false)
	for i := 0; i < b.N; i++ {
		buf.Reset()
		l.Info("peer %s joined", "127.0.0.1:5000")
	}
}
