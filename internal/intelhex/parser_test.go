package intelhex

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// line encodes one record with a valid checksum.
func line(recType uint8, offset uint16, body ...byte) string {
	raw := []byte{byte(len(body)), byte(offset >> 8), byte(offset), recType}
	raw = append(raw, body...)
	var sum uint8
	for _, b := range raw {
		sum += b
	}
	raw = append(raw, ^sum+1)
	return fmt.Sprintf(":%X\n", raw)
}

func TestParserKnownRecord(t *testing.T) {
	// Classic example from the format description.
	src := ":10010000214601360121470136007EFE09D2190140\n:00000001FF\n"
	p := NewParser(strings.NewReader(src))

	rec, addr, err := p.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if rec.Length != 0x10 || rec.Offset != 0x0100 || rec.RecType != TypeData || addr != 0x0100 {
		t.Errorf("unexpected record %+v at 0x%x", rec, addr)
	}
	if rec.Body[0] != 0x21 || rec.Body[15] != 0x01 {
		t.Errorf("unexpected body % x", rec.Body)
	}

	if _, _, err := p.Next(); err != nil {
		t.Fatalf("Next() EOF error = %v", err)
	}
	if p.HasNext() {
		t.Error("HasNext() after EOF record")
	}
}

func TestParserAddressing(t *testing.T) {
	src := line(TypeExtendedLinearAddress, 0, 0x00, 0x02) +
		line(TypeData, 0x6000, 0xAA) +
		line(TypeExtendedSegmentAddress, 0, 0x10, 0x00) +
		line(TypeData, 0x0004, 0xBB) +
		line(TypeStartLinearAddress, 0, 0, 0, 0, 0) +
		line(TypeEOF, 0)
	p := NewParser(strings.NewReader(src))

	var addrs []uint32
	for p.HasNext() {
		rec, addr, err := p.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if rec.RecType == TypeData {
			addrs = append(addrs, addr)
		}
	}
	if len(addrs) != 2 || addrs[0] != 0x26000 || addrs[1] != 0x10004 {
		t.Errorf("data addresses = %x", addrs)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "bad checksum", src: ":0100000000FE\n", want: ErrChecksum},
		{name: "missing eof", src: line(TypeData, 0, 1), want: ErrMissingEOF},
		{name: "bad mark", src: "0100000000FF\n"},
		{name: "bad hex", src: ":zz\n"},
		{name: "short", src: ":0000\n"},
		{name: "length mismatch", src: ":0200000001FD\n"},
		{name: "unknown type", src: line(0x09, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(strings.NewReader(tt.src))
			var err error
			for p.HasNext() && err == nil {
				_, _, err = p.Next()
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadImageMergesAndSorts(t *testing.T) {
	src := line(TypeData, 0x0010, 3, 4) +
		line(TypeData, 0x0000, 1, 2) +
		line(TypeData, 0x0002, 9) +
		line(TypeData, 0x0012, 5) +
		"\n" +
		line(TypeEOF, 0)

	img, err := ReadImage(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadImage() error = %v", err)
	}
	if len(img.Segments) != 2 {
		t.Fatalf("segments = %+v", img.Segments)
	}
	if img.Segments[0].Address != 0 || !bytes.Equal(img.Segments[0].Data, []byte{1, 2, 9}) {
		t.Errorf("segment 0 = %+v", img.Segments[0])
	}
	if img.Segments[1].Address != 0x10 || !bytes.Equal(img.Segments[1].Data, []byte{3, 4, 5}) {
		t.Errorf("segment 1 = %+v", img.Segments[1])
	}
	if img.Size() != 6 || img.Segments[1].End() != 0x13 {
		t.Errorf("Size() = %d, End() = %#x", img.Size(), img.Segments[1].End())
	}
}

func TestReadImageOverlap(t *testing.T) {
	src := line(TypeData, 0, 1, 2, 3) + line(TypeData, 1, 7) + line(TypeEOF, 0)
	if _, err := ReadImage(strings.NewReader(src)); !errors.Is(err, ErrOverlap) {
		t.Errorf("ReadImage() error = %v, want ErrOverlap", err)
	}
}
