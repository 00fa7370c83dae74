// Package codec turns a value store into a short URL-safe share code and
// back.
//
// A share code carries raw numbers only. The recipe's structure is not
// included; a reader rebuilds the same recipe shape first and then loads
// the decoded values into it by slot position.
//
// Layout, outermost first:
//
//	unpadded URL-safe base64
//	  4-byte little-endian uncompressed length
//	  LZ4 block
//	    CBOR array of floats, each in its shortest lossless width
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/pierrec/lz4/v4"

	"github.com/roach88/overproofed/internal/values"
)

// ErrCorrupt is wrapped by every error returned for input that cannot be
// decoded.
var ErrCorrupt = errors.New("codec: corrupt share code")

// MaxExpandedSize bounds the uncompressed length a share code may claim.
const MaxExpandedSize = 1 << 24

const sizePrefix = 4

var shareEncoding = base64.RawURLEncoding

// cborEncMode uses canonical options, which also pick the shortest float
// width that round-trips (unsolved NaN becomes a 2-byte half float).
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Compact compresses data into a share code.
func Compact(data []byte) (string, error) {
	out := make([]byte, sizePrefix+lz4.CompressBlockBound(len(data)))
	binary.LittleEndian.PutUint32(out, uint32(len(data)))

	if len(data) == 0 {
		return shareEncoding.EncodeToString(out[:sizePrefix]), nil
	}

	n, err := lz4.CompressBlock(data, out[sizePrefix:], nil)
	if err != nil {
		return "", fmt.Errorf("codec: compress: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("codec: compress: lz4 produced no output for %d bytes", len(data))
	}

	return shareEncoding.EncodeToString(out[:sizePrefix+n]), nil
}

// Expand reverses Compact.
func Expand(s string) ([]byte, error) {
	raw, err := shareEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrCorrupt, err)
	}
	if len(raw) < sizePrefix {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the size prefix", ErrCorrupt, len(raw))
	}

	size := binary.LittleEndian.Uint32(raw)
	if size > MaxExpandedSize {
		return nil, fmt.Errorf("%w: claimed size %d exceeds %d", ErrCorrupt, size, MaxExpandedSize)
	}
	if size == 0 {
		return []byte{}, nil
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(raw[sizePrefix:], out)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
	}
	if n != int(size) {
		return nil, fmt.Errorf("%w: expanded to %d bytes, want %d", ErrCorrupt, n, size)
	}
	return out, nil
}

// MarshalValues encodes vs as a CBOR array.
func MarshalValues(vs []float64) ([]byte, error) {
	if vs == nil {
		vs = []float64{}
	}
	data, err := cborEncMode.Marshal(vs)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal values: %w", err)
	}
	return data, nil
}

// UnmarshalValues decodes a CBOR array of numbers.
func UnmarshalValues(data []byte) ([]float64, error) {
	var vs []float64
	if err := cbor.Unmarshal(data, &vs); err != nil {
		return nil, fmt.Errorf("%w: cbor: %v", ErrCorrupt, err)
	}
	if len(vs) > values.MaxCapacity {
		return nil, fmt.Errorf("%w: %d values exceeds store limit %d", ErrCorrupt, len(vs), values.MaxCapacity)
	}
	return vs, nil
}

// Encode returns the share code for vs.
func Encode(vs []float64) (string, error) {
	data, err := MarshalValues(vs)
	if err != nil {
		return "", err
	}
	return Compact(data)
}

// Decode reverses Encode.
func Decode(s string) ([]float64, error) {
	data, err := Expand(s)
	if err != nil {
		return nil, err
	}
	return UnmarshalValues(data)
}

// EncodeValues returns the share code for every allocated slot of v.
func EncodeValues(v *values.Values) (string, error) {
	return Encode(v.Snapshot())
}

// DecodeValues decodes s and loads the values into v by slot position,
// returning how many slots were written. v must already hold a recipe of
// the same shape as the one s was made from.
func DecodeValues(s string, v *values.Values) (int, error) {
	vs, err := Decode(s)
	if err != nil {
		return 0, err
	}
	return v.Load(vs), nil
}
