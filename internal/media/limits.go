package media

import (
	"fmt"
	"io"
)

const (
	// MaxImageBytes is the default max accepted image size.
	MaxImageBytes int64 = 50 * 1024 * 1024
)

// CopyWithLimit copies reader into w and rejects payloads larger than maxBytes
// or empty payloads. On error, w may hold a prefix of the data; callers must
// discard it.
func CopyWithLimit(w io.Writer, reader io.Reader, maxBytes int64) (int64, error) {
	if reader == nil {
		return 0, fmt.Errorf("reader is required")
	}
	if maxBytes <= 0 {
		return 0, fmt.Errorf("max bytes must be greater than 0")
	}
	limited := &io.LimitedReader{R: reader, N: maxBytes + 1}
	written, err := io.Copy(w, limited)
	if err != nil {
		return written, err
	}
	if written > maxBytes {
		return written, fmt.Errorf("%w: max %d bytes", ErrImageTooLarge, maxBytes)
	}
	if written == 0 {
		return 0, ErrEmptyContent
	}
	return written, nil
}
