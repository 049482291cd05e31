package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// FrameReader splits a byte stream into newline-terminated frames.
type FrameReader struct {
	r *bufio.Reader
}

// NewFrameReader wraps r. The FrameReader must be the only reader of r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// ReadFrame blocks until one complete frame is available and returns it,
// delimiter included. A stream that ends before the delimiter is a
// TransportError.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	var frame []byte
	for {
		chunk, err := fr.r.ReadSlice(FrameDelimiter)
		frame = append(frame, chunk...)

		if len(frame) > MaxFrameSize {
			return nil, Protocolf("frame exceeds %d bytes", MaxFrameSize)
		}

		switch {
		case err == nil:
			return frame, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(frame) == 0 {
				return nil, &TransportError{Op: "read", Err: io.EOF}
			}
			return nil, &TransportError{Op: "read", Err: io.ErrUnexpectedEOF}
		default:
			return nil, &TransportError{Op: "read", Err: err}
		}
	}
}

// WriteFrame writes one encoded frame to w.
func WriteFrame(w io.Writer, frame []byte) error {
	if len(frame) == 0 || frame[len(frame)-1] != FrameDelimiter {
		return fmt.Errorf("frame is not %q-terminated", FrameDelimiter)
	}
	n, err := w.Write(frame)
	if err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	if n != len(frame) {
		return &TransportError{Op: "write", Err: io.ErrShortWrite}
	}
	return nil
}
