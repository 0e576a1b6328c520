// Package payload decodes the profile and graph-export bodies the server
// ambiguously wraps in zlib or gzip, or leaves as plaintext.
package payload

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// ErrDecompress is returned when the detected compression format yields
// no usable output.
var ErrDecompress = errors.New("payload: decompress failed")

// Decompress inspects the leading bytes of data and decodes it as zlib,
// gzip, or returns it unchanged if neither signature matches.
func Decompress(data []byte) ([]byte, error) {
	switch {
	case isZlib(data):
		return decodeZlib(data)
	case isGzip(data):
		return decodeGzip(data)
	default:
		return data, nil
	}
}

func isZlib(data []byte) bool {
	if len(data) < 2 || data[0] != 0x78 {
		return false
	}
	switch data[1] {
	case 0x01, 0x5E, 0x9C, 0xDA:
		return true
	default:
		return false
	}
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B
}

func decodeZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	if len(out) == 0 {
		return nil, ErrDecompress
	}
	return out, nil
}

func decodeGzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	if len(out) == 0 {
		return nil, ErrDecompress
	}
	return out, nil
}
