// Package intelhex reads Intel HEX firmware images.
package intelhex

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record types
const (
	TypeData                   uint8 = 0x00
	TypeEOF                    uint8 = 0x01
	TypeExtendedSegmentAddress uint8 = 0x02
	TypeStartSegmentAddress    uint8 = 0x03
	TypeExtendedLinearAddress  uint8 = 0x04
	TypeStartLinearAddress     uint8 = 0x05
)

var (
	// ErrChecksum is returned when a record checksum does not match
	ErrChecksum = errors.New("intelhex: mismatched checksum")
	// ErrMissingEOF is returned when input ends before an EOF record
	ErrMissingEOF = errors.New("intelhex: missing EOF record")
)

// Record is one decoded line.
type Record struct {
	Length  uint8
	Offset  uint16
	RecType uint8
	Body    []byte
}

// Parser walks an Intel HEX stream one record at a time.
type Parser struct {
	s    *bufio.Scanner
	line int

	baseAddress uint32
	eof         bool
}

// NewParser creates a parser over r
func NewParser(r io.Reader) *Parser {
	return &Parser{s: bufio.NewScanner(r)}
}

// HasNext reports whether the EOF record has not been seen yet.
func (p *Parser) HasNext() bool {
	return !p.eof
}

// Next reads the next record and returns the absolute address its body
// lands at. The address is only meaningful for data records.
// https://en.wikipedia.org/wiki/Intel_HEX#Format
func (p *Parser) Next() (Record, uint32, error) {
	text, err := p.nextLine()
	if err != nil {
		return Record{}, 0, err
	}

	if text[0] != ':' {
		return Record{}, 0, fmt.Errorf("intelhex: line %d: unexpected mark byte %q", p.line, text[0])
	}
	raw, err := hex.DecodeString(text[1:])
	if err != nil {
		return Record{}, 0, fmt.Errorf("intelhex: line %d: %w", p.line, err)
	}
	if len(raw) < 5 {
		return Record{}, 0, fmt.Errorf("intelhex: line %d: record too short", p.line)
	}

	r := Record{
		Length:  raw[0],
		Offset:  binary.BigEndian.Uint16(raw[1:3]),
		RecType: raw[3],
	}
	if len(raw) != int(r.Length)+5 {
		return Record{}, 0, fmt.Errorf("intelhex: line %d: length %d does not match record size", p.line, r.Length)
	}
	r.Body = raw[4 : 4+int(r.Length)]

	var sum uint8
	for _, b := range raw[:len(raw)-1] {
		sum += b
	}
	if ^sum+1 != raw[len(raw)-1] { // 2's complement
		return Record{}, 0, fmt.Errorf("%w on line %d", ErrChecksum, p.line)
	}

	addr := p.baseAddress + uint32(r.Offset)

	switch r.RecType {
	case TypeData:
	case TypeEOF:
		p.eof = true
	case TypeExtendedSegmentAddress:
		if r.Length != 2 {
			return Record{}, 0, fmt.Errorf("intelhex: line %d: bad segment address record", p.line)
		}
		p.baseAddress = uint32(binary.BigEndian.Uint16(r.Body)) << 4
	case TypeExtendedLinearAddress:
		if r.Length != 2 {
			return Record{}, 0, fmt.Errorf("intelhex: line %d: bad linear address record", p.line)
		}
		p.baseAddress = uint32(binary.BigEndian.Uint16(r.Body)) << 16
	case TypeStartSegmentAddress, TypeStartLinearAddress:
	default:
		return Record{}, 0, fmt.Errorf("intelhex: line %d: unknown record type %d", p.line, r.RecType)
	}

	return r, addr, nil
}

func (p *Parser) nextLine() (string, error) {
	for p.s.Scan() {
		p.line++
		text := strings.TrimSpace(p.s.Text())
		if text != "" {
			return text, nil
		}
	}
	if err := p.s.Err(); err != nil {
		return "", err
	}
	return "", ErrMissingEOF
}
