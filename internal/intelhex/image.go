package intelhex

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrOverlap is returned when two data records cover the same address
var ErrOverlap = errors.New("intelhex: overlapping data records")

// Segment is a contiguous run of bytes starting at Address.
type Segment struct {
	Address uint32
	Data    []byte
}

// End returns the first address past the segment.
func (s Segment) End() uint64 {
	return uint64(s.Address) + uint64(len(s.Data))
}

// Image is the flattened content of a HEX file, sorted by address with
// adjacent records merged.
type Image struct {
	Segments []Segment
}

// Size returns the number of data bytes in the image.
func (img *Image) Size() int {
	n := 0
	for _, s := range img.Segments {
		n += len(s.Data)
	}
	return n
}

// ReadImage parses a complete HEX stream.
func ReadImage(r io.Reader) (*Image, error) {
	p := NewParser(r)

	var chunks []Segment
	for p.HasNext() {
		rec, addr, err := p.Next()
		if err != nil {
			return nil, err
		}
		if rec.RecType != TypeData || len(rec.Body) == 0 {
			continue
		}
		data := make([]byte, len(rec.Body))
		copy(data, rec.Body)
		chunks = append(chunks, Segment{Address: addr, Data: data})
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Address < chunks[j].Address
	})

	img := &Image{}
	for _, c := range chunks {
		n := len(img.Segments)
		if n > 0 {
			last := &img.Segments[n-1]
			switch end := last.End(); {
			case uint64(c.Address) < end:
				return nil, fmt.Errorf("%w at 0x%08x", ErrOverlap, c.Address)
			case uint64(c.Address) == end:
				last.Data = append(last.Data, c.Data...)
				continue
			}
		}
		img.Segments = append(img.Segments, c)
	}
	return img, nil
}
