package processor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1

	maxIFDs = 8
)

var exifHeader = []byte("Exif\x00\x00")

// Tags whose value is the offset of another IFD.
var subIFDPointers = map[uint16]bool{
	0x8769: true, // Exif
	0x8825: true, // GPS
	0xA005: true, // Interoperability
}

// exifPayload walks the JPEG marker segments up to the first scan and
// returns the TIFF structure of the first EXIF APP1 segment. The result is
// bounded by the 16-bit segment length.
func exifPayload(src []byte) ([]byte, error) {
	if len(src) < 2 || src[0] != 0xFF || src[1] != markerSOI {
		return nil, errors.New("not a JPEG stream")
	}

	for i := 2; i < len(src); {
		if src[i] != 0xFF {
			return nil, fmt.Errorf("expected marker at offset %d", i)
		}
		for i < len(src) && src[i] == 0xFF {
			i++
		}
		if i >= len(src) {
			break
		}
		marker := src[i]
		i++

		switch {
		case marker == markerSOS || marker == markerEOI:
			return nil, errors.New("no EXIF segment")
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			continue
		}

		if i+2 > len(src) {
			return nil, errors.New("truncated segment length")
		}
		length := int(binary.BigEndian.Uint16(src[i:]))
		if length < 2 || i+length > len(src) {
			return nil, fmt.Errorf("segment 0x%02X overruns the stream", marker)
		}
		segment := src[i+2 : i+length]
		if marker == markerAPP1 && bytes.HasPrefix(segment, exifHeader) {
			return segment[len(exifHeader):], nil
		}
		i += length
	}
	return nil, errors.New("no EXIF segment")
}

// checkTIFF rejects EXIF structures whose declared value sizes do not fit
// in the payload. Every IFD goexif would visit is checked: the IFD0 chain
// and the Exif, GPS and Interoperability sub-IFDs.
func checkTIFF(payload []byte) error {
	if len(payload) < 8 {
		return errors.New("short TIFF header")
	}

	var order binary.ByteOrder
	switch string(payload[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return errors.New("unknown TIFF byte order")
	}
	if order.Uint16(payload[2:]) != 42 {
		return errors.New("missing TIFF marker")
	}

	visited := map[uint32]bool{}
	visit := func(offset uint32) (uint32, []uint32, error) {
		if visited[offset] {
			return 0, nil, fmt.Errorf("IFD at %d is referenced twice", offset)
		}
		if len(visited) == maxIFDs {
			return 0, nil, errors.New("too many IFDs")
		}
		visited[offset] = true
		return checkIFD(payload, offset, order)
	}

	var subDirs []uint32
	for offset := order.Uint32(payload[4:]); offset != 0; {
		next, pointers, err := visit(offset)
		if err != nil {
			return err
		}
		subDirs = append(subDirs, pointers...)
		offset = next
	}

	// Sub-IFDs are read as single directories; their next link is ignored.
	for len(subDirs) > 0 {
		offset := subDirs[0]
		subDirs = subDirs[1:]
		if visited[offset] {
			continue
		}
		_, pointers, err := visit(offset)
		if err != nil {
			return err
		}
		subDirs = append(subDirs, pointers...)
	}
	return nil
}

func checkIFD(payload []byte, offset uint32, order binary.ByteOrder) (next uint32, pointers []uint32, err error) {
	size := uint64(len(payload))
	if uint64(offset)+2 > size {
		return 0, nil, fmt.Errorf("IFD offset %d outside the segment", offset)
	}
	count := uint64(order.Uint16(payload[offset:]))
	end := uint64(offset) + 2 + count*12
	if end+4 > size {
		return 0, nil, fmt.Errorf("IFD at %d with %d entries overruns the segment", offset, count)
	}

	for e := uint64(offset) + 2; e < end; e += 12 {
		entry := payload[e : e+12]
		id := order.Uint16(entry)
		typ := order.Uint16(entry[2:])
		n := uint64(order.Uint32(entry[4:]))

		if valLen := n * tiffTypeSize(typ); valLen > size {
			return 0, nil, fmt.Errorf("tag 0x%04X declares %d values of type %d", id, n, typ)
		}
		if subIFDPointers[id] {
			switch {
			case n == 1 && typ == 3:
				pointers = append(pointers, uint32(order.Uint16(entry[8:])))
			case n == 1 && typ == 4:
				pointers = append(pointers, order.Uint32(entry[8:]))
			default:
				return 0, nil, fmt.Errorf("malformed IFD pointer tag 0x%04X", id)
			}
		}
	}
	return order.Uint32(payload[end:]), pointers, nil
}

func tiffTypeSize(typ uint16) uint64 {
	switch typ {
	case 1, 2, 6, 7: // byte, ascii, sbyte, undefined
		return 1
	case 3, 8: // short, sshort
		return 2
	case 4, 9, 11: // long, slong, float
		return 4
	case 5, 10, 12: // rational, srational, double
		return 8
	}
	return 0
}
