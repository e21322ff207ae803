// Package codecs wraps the compression codecs hgraphio supports when
// reading or writing partition files, so callers pick a
// codec by name rather than importing a specific compression library
// directly.
package codecs

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressionCodec selects how a partition file's bytes are
// framed on disk.
type CompressionCodec int

const (
	None CompressionCodec = iota
	Gzip
	Snappy
	Zstandard
)

func (c CompressionCodec) String() string {
	switch c {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Snappy:
		return "snappy"
	case Zstandard:
		return "zstandard"
	default:
		return fmt.Sprintf("CompressionCodec(%d)", int(c))
	}
}

// Decompressor is a ReadCloser where Close releases Decompressor state but
// does not Close or otherwise affect the underlying Reader.
type Decompressor io.ReadCloser

// Compressor is a WriteCloser where Close flushes and releases Compressor
// state but does not Close or otherwise affect the underlying Writer.
type Compressor io.WriteCloser

// NewCodecReader returns a Decompressor of r, assuming r's bytes were
// encoded with codec.
func NewCodecReader(r io.Reader, codec CompressionCodec) (Decompressor, error) {
	switch codec {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case Zstandard:
		var dec, err = zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("codecs: unsupported codec %s", codec)
	}
}

// NewCodecWriter returns a Compressor wrapping w, encoding with codec.
func NewCodecWriter(w io.Writer, codec CompressionCodec) (Compressor, error) {
	switch codec {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case Zstandard:
		return zstd.NewWriter(w)
	default:
		return nil, fmt.Errorf("codecs: unsupported codec %s", codec)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
