package indexfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// magic identifies an index artifact.
var magic = [4]byte{'C', 'R', 'I', 'X'}

const codecVersion uint16 = 1

// header is the fixed-size prefix of an artifact, followed by
// Count*Dimensions little-endian float32 values.
type header struct {
	Magic      [4]byte
	Version    uint16
	_          uint16
	Count      uint32
	Dimensions uint32
}

var headerSize = binary.Size(header{})

// ErrCodec indicates an artifact that is not a valid vector file.
var ErrCodec = errors.New("invalid index artifact")

// Encode serialises vectors that all have the given dimension.
func Encode(vectors [][]float32, dimensions int) ([]byte, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrCodec, dimensions)
	}
	for i, v := range vectors {
		if len(v) != dimensions {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrCodec, i, len(v), dimensions)
		}
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(vectors)*dimensions*4)
	h := header{
		Magic:      magic,
		Version:    codecVersion,
		Count:      uint32(len(vectors)),
		Dimensions: uint32(dimensions),
	}
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	var word [4]byte
	for _, v := range vectors {
		for _, x := range v {
			binary.LittleEndian.PutUint32(word[:], math.Float32bits(x))
			buf.Write(word[:])
		}
	}
	return buf.Bytes(), nil
}

// Decode parses an artifact and returns its vectors and dimension.
func Decode(data []byte) ([][]float32, int, error) {
	if len(data) < headerSize {
		return nil, 0, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCodec, len(data))
	}
	var h header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	if h.Magic != magic {
		return nil, 0, fmt.Errorf("%w: bad magic %q", ErrCodec, h.Magic[:])
	}
	if h.Version != codecVersion {
		return nil, 0, fmt.Errorf("%w: unsupported version %d", ErrCodec, h.Version)
	}
	count, dims := int(h.Count), int(h.Dimensions)
	if dims == 0 {
		return nil, 0, fmt.Errorf("%w: zero dimensions", ErrCodec)
	}
	body := data[headerSize:]
	if want := count * dims * 4; len(body) != want {
		return nil, 0, fmt.Errorf("%w: body is %d bytes, want %d", ErrCodec, len(body), want)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, dims)
		for j := range v {
			off := (i*dims + j) * 4
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(body[off : off+4]))
		}
		vectors[i] = v
	}
	return vectors, dims, nil
}
