package message

import (
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	got := string(Format("127.0.0.1:50000", "hello"))
	if want := "[127.0.0.1:50000] hello\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		frame    string
		wantAddr string
		wantText string
		wantOK   bool
	}{
		{"[127.0.0.1:5000] hello\n", "127.0.0.1:5000", "hello", true},
		{"[::1:5000] a] b", "::1:5000", "a] b", true},
		{"[h:1] ", "h:1", "", true},
		{"hello", "", "", false},
		{"[no-close hello", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.frame, func(t *testing.T) {
			addr, text, ok := Parse(tt.frame)
			if ok != tt.wantOK || addr != tt.wantAddr || text != tt.wantText {
				t.Errorf("Parse(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.frame, addr, text, ok, tt.wantAddr, tt.wantText, tt.wantOK)
			}
		})
	}
}

func TestReassembler_SplitAndCoalesce(t *testing.T) {
	var r Reassembler

	// Two frames arrive coalesced, the third split across writes.
	r.Write([]byte("[a:1] one\n[a:1] two\n[a:1] th")) //nolint:errcheck
	got := r.Frames()
	if len(got) != 2 || got[0] != "[a:1] one" || got[1] != "[a:1] two" {
		t.Fatalf("frames = %q", got)
	}
	if r.Pending() != len("[a:1] th") {
		t.Errorf("pending = %d", r.Pending())
	}

	r.Write([]byte("ree\n")) //nolint:errcheck
	f, ok := r.Next()
	if !ok || f != "[a:1] three" {
		t.Errorf("Next = (%q, %v)", f, ok)
	}
	if _, ok := r.Next(); ok {
		t.Error("no frame should remain")
	}
}

func TestReassembler_OrderPreserved(t *testing.T) {
	var r Reassembler
	var stream []byte
	for i := 1; i <= 10; i++ {
		stream = append(stream, Format("h:1", fmt.Sprintf("Mensaje Secuencia %d", i))...)
	}
	// Feed in awkward chunk sizes.
	for len(stream) > 0 {
		n := 7
		if n > len(stream) {
			n = len(stream)
		}
		r.Write(stream[:n]) //nolint:errcheck
		stream = stream[n:]
	}

	frames := r.Frames()
	if len(frames) != 10 {
		t.Fatalf("got %d frames, want 10", len(frames))
	}
	for i, f := range frames {
		_, text, ok := Parse(f)
		if want := fmt.Sprintf("Mensaje Secuencia %d", i+1); !ok || text != want {
			t.Errorf("frame %d = %q, want text %q", i, f, want)
		}
	}
}

func TestReassemblerRest(t *testing.T) {
	var r Reassembler
	r.Write([]byte("[a:1] done\n[a:1] half")) //nolint:errcheck

	if f, ok := r.Next(); !ok || f != "[a:1] done" {
		t.Fatalf("Next = %q, %v", f, ok)
	}
	if got := r.Rest(); got != "[a:1] half" {
		t.Errorf("Rest = %q", got)
	}
	if r.Pending() != 0 || r.Rest() != "" {
		t.Error("Rest should drain the buffer")
	}
}
