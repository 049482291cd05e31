package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestReadFrame(t *testing.T) {
	// OneByteReader forces the frame to be accumulated across many reads.
	r := NewFrameReader(iotest.OneByteReader(strings.NewReader("{\"type\":\"start\",\"id\":\"a\"}\n{\"type\":\"bye\",\"id\":\"a\",\"flag\":\"F\"}\n")))

	first, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if string(first) != "{\"type\":\"start\",\"id\":\"a\"}\n" {
		t.Errorf("first frame = %q", first)
	}

	second, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if !bytes.HasSuffix(second, []byte("\"flag\":\"F\"}\n")) {
		t.Errorf("second frame = %q", second)
	}

	_, err = r.ReadFrame()
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("ReadFrame() at EOF error = %v, want *TransportError", err)
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrame() at EOF should wrap io.EOF, got %v", err)
	}
}

func TestReadFramePartial(t *testing.T) {
	r := NewFrameReader(strings.NewReader(`{"type":"start"`))

	_, err := r.ReadFrame()
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("ReadFrame() error = %v, want *TransportError", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadFrame() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadFrameLargerThanBuffer(t *testing.T) {
	word := strings.Repeat("a", 10000)
	r := NewFrameReader(strings.NewReader(`{"type":"error","message":"` + word + "\"}\n"))

	frame, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	msg, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := msg.(*Error).Message; got != word {
		t.Errorf("message length = %d, want %d", len(got), len(word))
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	r := NewFrameReader(strings.NewReader(strings.Repeat("x", MaxFrameSize+10) + "\n"))

	_, err := r.ReadFrame()
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("ReadFrame() error = %v, want *ProtocolError", err)
	}
}

func TestReadFrameError(t *testing.T) {
	boom := errors.New("connection reset")
	r := NewFrameReader(iotest.ErrReader(boom))

	_, err := r.ReadFrame()
	if !errors.Is(err, boom) {
		t.Fatalf("ReadFrame() error = %v, want wrapped %v", err, boom)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("{}\n")); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	if buf.String() != "{}\n" {
		t.Errorf("written = %q", buf.String())
	}

	if err := WriteFrame(&buf, []byte("{}")); err == nil {
		t.Error("WriteFrame() accepted an unterminated frame")
	}

	err := WriteFrame(failingWriter{}, []byte("{}\n"))
	var terr *TransportError
	if !errors.As(err, &terr) || terr.Op != "write" {
		t.Errorf("WriteFrame() error = %v, want write TransportError", err)
	}
}
