// Package uf2 writes UF2 flashing containers.
// https://github.com/microsoft/uf2
package uf2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/kodedot/kodebuild/internal/intelhex"
)

// Block layout constants
const (
	BlockSize   = 512
	PayloadSize = 256

	MagicStart0 uint32 = 0x0A324655 // "UF2\n"
	MagicStart1 uint32 = 0x9E5D5157
	MagicEnd    uint32 = 0x0AB16F30

	FlagFamilyIDPresent uint32 = 0x00002000
)

// FamilyNRF52840 is the UF2 family ID of the nRF52840.
const FamilyNRF52840 uint32 = 0xADA52840

// DefaultBaseAddress is where raw binaries are placed when no address is
// given; it matches the nRF52 Adafruit bootloader application start.
const DefaultBaseAddress uint32 = 0x2000

// ErrEmpty is returned when there is nothing to flash
var ErrEmpty = errors.New("uf2: no data")

// Block is one 256-byte page of the target flash.
type Block struct {
	Address uint32
	Data    [PayloadSize]byte
}

// Pages splits an image into page-aligned blocks. Bytes of a page not
// covered by the image are zero.
func Pages(img *intelhex.Image) []Block {
	pages := make(map[uint32]*Block)
	for _, seg := range img.Segments {
		for i, b := range seg.Data {
			addr := seg.Address + uint32(i)
			base := addr &^ (PayloadSize - 1)
			blk, ok := pages[base]
			if !ok {
				blk = &Block{Address: base}
				pages[base] = blk
			}
			blk.Data[addr-base] = b
		}
	}

	blocks := make([]Block, 0, len(pages))
	for _, blk := range pages {
		blocks = append(blocks, *blk)
	}
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Address < blocks[j].Address
	})
	return blocks
}

// Encode writes blocks as a UF2 stream. A zero familyID omits the family flag.
func Encode(w io.Writer, blocks []Block, familyID uint32) error {
	if len(blocks) == 0 {
		return ErrEmpty
	}

	var flags uint32
	if familyID != 0 {
		flags |= FlagFamilyIDPresent
	}

	buf := make([]byte, BlockSize)
	total := uint32(len(blocks))
	for i, blk := range blocks {
		for j := range buf {
			buf[j] = 0
		}
		le := binary.LittleEndian
		le.PutUint32(buf[0:], MagicStart0)
		le.PutUint32(buf[4:], MagicStart1)
		le.PutUint32(buf[8:], flags)
		le.PutUint32(buf[12:], blk.Address)
		le.PutUint32(buf[16:], PayloadSize)
		le.PutUint32(buf[20:], uint32(i))
		le.PutUint32(buf[24:], total)
		le.PutUint32(buf[28:], familyID)
		copy(buf[32:], blk.Data[:])
		le.PutUint32(buf[BlockSize-4:], MagicEnd)

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("uf2: writing block %d: %w", i, err)
		}
	}
	return nil
}

// FromHex converts an Intel HEX stream to UF2 and returns the block count.
func FromHex(w io.Writer, hex io.Reader, familyID uint32) (int, error) {
	img, err := intelhex.ReadImage(hex)
	if err != nil {
		return 0, err
	}
	blocks := Pages(img)
	return len(blocks), Encode(w, blocks, familyID)
}

// FromBinary converts a raw binary placed at base to UF2.
func FromBinary(w io.Writer, data []byte, base, familyID uint32) (int, error) {
	img := &intelhex.Image{Segments: []intelhex.Segment{{Address: base, Data: data}}}
	blocks := Pages(img)
	return len(blocks), Encode(w, blocks, familyID)
}
