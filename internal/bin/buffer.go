package bin

import (
	"errors"
	"io"
)

// Buffer is an in-memory io.WriteSeeker. Trees are serialized into a Buffer
// and the result copied to the destination, since files opened for streaming
// output are not guaranteed to be seekable.
type Buffer struct {
	buf []byte
	off int64
}

var errNegativeOffset = errors.New("bin.Buffer: negative position")

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.off + int64(len(p))
	if end > int64(len(b.buf)) {
		if end > int64(cap(b.buf)) {
			grown := make([]byte, end, max(end, 2*int64(cap(b.buf))))
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[b.off:], p)
	b.off = end
	return len(p), nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("bin.Buffer: invalid whence")
	}
	if abs < 0 {
		return 0, errNegativeOffset
	}
	b.off = abs
	return abs, nil
}

// Bytes returns the full buffer contents regardless of the current position.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// WriteTo copies the full buffer contents to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf)
	return int64(n), err
}

// Marshal serializes t into a byte slice.
func Marshal(t *Tree) ([]byte, error) {
	var buf Buffer
	if err := t.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
