package record

import (
	"io"
	"strings"
	"testing"
)

func TestLineReaderBasic(t *testing.T) {
	lr := NewLineReader(strings.NewReader("a\nb\nc"), nil)

	var got []string
	for {
		line, tail, err := lr.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, string(line))
		if tail && string(line) != "c" {
			t.Fatalf("unexpected tail line %q", line)
		}
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestLineReaderStripsCRLF(t *testing.T) {
	lr := NewLineReader(strings.NewReader("a\r\nb\r\n"), nil)
	line, _, err := lr.ReadLine()
	if err != nil || string(line) != "a" {
		t.Fatalf("got %q, err %v", line, err)
	}
}

func TestLineReaderStripsBOM(t *testing.T) {
	lr := NewLineReader(strings.NewReader("\xEF\xBB\xBFa,b\nc,d\n"), nil)
	line, _, err := lr.ReadLine()
	if err != nil || string(line) != "a,b" {
		t.Fatalf("got %q, err %v", line, err)
	}
}

func TestLineReaderMultiByteIRS(t *testing.T) {
	lr := NewLineReader(strings.NewReader("a::b::c"), []byte("::"))
	var lines []string
	for {
		line, _, err := lr.ReadLine()
		if err == io.EOF {
			break
		}
		lines = append(lines, string(line))
	}
	if len(lines) != 3 || lines[2] != "c" {
		t.Fatalf("got %v", lines)
	}
}

func TestLineReaderChunkedAcrossReads(t *testing.T) {
	r := &stepReader{chunks: []string{"ab", "c\nd", "ef\n"}}
	lr := NewLineReader(r, nil)
	var lines []string
	for {
		line, _, err := lr.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines = append(lines, string(line))
	}
	want := []string{"abc", "def"}
	if len(lines) != 2 || lines[0] != want[0] || lines[1] != want[1] {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

// stepReader returns one chunk per Read call, simulating partial reads
// that span multiple fill() calls in LineReader.
type stepReader struct {
	chunks []string
	pos    int
}

func (s *stepReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.chunks) {
		return 0, io.EOF
	}
	n := copy(p, s.chunks[s.pos])
	s.pos++
	return n, nil
}
