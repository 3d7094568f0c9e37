// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import "encoding/binary"

// phase names the two states of the Decoder's resumable state machine.
type phase int

const (
	phaseAwaitHeader phase = iota
	phaseAwaitPayload
)

// Decoder is a fully resumable, byte-driven RFC 6455 frame parser. It
// accepts arbitrary, possibly fragmented, byte deliveries through Feed and
// invokes onFrame once per completed frame, synchronously, on the same
// call stack. A Decoder is not safe for concurrent use; it is meant to be
// owned by a single connection's read loop.
type Decoder struct {
	onFrame func(Opcode, []byte)

	phase   phase
	scratch []byte

	header  FrameHeader
	payload []byte
	written uint64

	dead bool
}

// NewDecoder returns a Decoder that reports each completed frame to onFrame.
func NewDecoder(onFrame func(Opcode, []byte)) *Decoder {
	return &Decoder{onFrame: onFrame}
}

// Feed consumes chunk in its entirety, advancing internal state and
// invoking onFrame once per completed frame. A zero-length chunk is a
// no-op. On the first detected protocol violation, Feed returns a
// *CodecError and the decoder becomes terminal: it must not be fed again.
func (d *Decoder) Feed(chunk []byte) error {
	if d.dead {
		return errDecoderDead
	}
	for {
		switch d.phase {
		case phaseAwaitHeader:
			if len(chunk) == 0 {
				return nil
			}
			if len(d.scratch) == 0 {
				// Fast path: try to parse directly out of chunk without a
				// copy into scratch; only buffer the remainder if the
				// header turns out to be split across deliveries.
				hdr, hdrLen, ok, err := parseHeader(chunk)
				if err != nil {
					d.dead = true
					return err
				}
				if !ok {
					d.scratch = append(d.scratch[:0], chunk...)
					return nil
				}
				chunk = d.startPayload(hdr, chunk[hdrLen:])
				continue
			}

			d.scratch = append(d.scratch, chunk...)
			chunk = nil
			hdr, hdrLen, ok, err := parseHeader(d.scratch)
			if err != nil {
				d.dead = true
				return err
			}
			if !ok {
				return nil
			}
			rest := d.scratch[hdrLen:]
			d.scratch = nil
			chunk = d.startPayload(hdr, rest)
			continue

		case phaseAwaitPayload:
			if len(chunk) == 0 {
				return nil
			}
			need := d.header.PayloadLength - d.written
			n := uint64(len(chunk))
			if n > need {
				n = need
			}
			copy(d.payload[d.written:], chunk[:n])
			d.written += n
			chunk = chunk[n:]
			if d.written < d.header.PayloadLength {
				return nil
			}
			d.emit()
			continue
		}
	}
}

// startPayload transitions from a just-completed header to either an
// immediate zero-length emission or the AWAIT_PAYLOAD phase, copying
// whatever payload bytes already arrived with the header. It returns
// whatever bytes remain unconsumed (the head of the next frame, if any),
// for the caller to re-loop with phase=AWAIT_HEADER.
func (d *Decoder) startPayload(hdr FrameHeader, rest []byte) []byte {
	d.header = hdr

	if hdr.PayloadLength == 0 {
		d.emitNow(hdr.Opcode, nil)
		return rest
	}

	d.payload = make([]byte, hdr.PayloadLength)
	n := uint64(len(rest))
	if n > hdr.PayloadLength {
		n = hdr.PayloadLength
	}
	copy(d.payload, rest[:n])
	d.written = n
	if d.written == hdr.PayloadLength {
		d.emit()
		return rest[n:]
	}
	d.phase = phaseAwaitPayload
	return rest[n:]
}

// emit unmasks the completed payload if necessary, hands it to onFrame,
// and resets the decoder to await the next frame's header.
func (d *Decoder) emit() {
	if d.header.Masked {
		applyMask(d.payload, d.header.Mask, 0)
	}
	d.emitNow(d.header.Opcode, d.payload)
}

func (d *Decoder) emitNow(opcode Opcode, payload []byte) {
	if d.onFrame != nil {
		d.onFrame(opcode, payload)
	}
	d.header = FrameHeader{}
	d.payload = nil
	d.written = 0
	d.phase = phaseAwaitHeader
}

// parseHeader attempts to parse a base-plus-extended RFC 6455 header from
// the start of buf. It returns (header, bytes consumed, true, nil) on
// success, (zero, 0, false, nil) if buf does not yet hold a complete
// header, and (zero, 0, false, err) on the first protocol violation.
func parseHeader(buf []byte) (FrameHeader, int, bool, error) {
	if len(buf) < 2 {
		return FrameHeader{}, 0, false, nil
	}

	b0, b1 := buf[0], buf[1]

	reservedZero := b0&0x70 == 0
	if !reservedZero {
		return FrameHeader{}, 0, false, &CodecError{
			Kind:    RsvNonZero,
			Message: "reserved bit set on incoming frame header",
		}
	}

	fin := b0&0x80 != 0
	opcode := Opcode(b0 & 0x0F)
	if !opcode.Valid() {
		return FrameHeader{}, 0, false, &CodecError{
			Kind:    InvalidOpcode,
			Message: "invalid opcode in frame header",
		}
	}
	if !opcode.IsData() && !fin {
		return FrameHeader{}, 0, false, &CodecError{
			Kind:    ExpectedFinal,
			Message: "control frame arrived with FIN=0",
		}
	}

	masked := b1&0x80 != 0
	len7 := b1 & 0x7F

	offset := 2
	var payloadLength uint64
	switch {
	case len7 <= 125:
		payloadLength = uint64(len7)
	case len7 == 126:
		if len(buf) < offset+2 {
			return FrameHeader{}, 0, false, nil
		}
		payloadLength = uint64(binary.BigEndian.Uint16(buf[offset:]))
		offset += 2
	default: // 127
		if len(buf) < offset+8 {
			return FrameHeader{}, 0, false, nil
		}
		payloadLength = binary.BigEndian.Uint64(buf[offset:])
		offset += 8
		if payloadLength >= maxSafeLength {
			return FrameHeader{}, 0, false, &CodecError{
				Kind:    UnsupportedLength,
				Message: "extended payload length is not representable without loss",
			}
		}
	}

	if opcode.IsControl() && payloadLength > maxControlFramePayload {
		return FrameHeader{}, 0, false, &CodecError{
			Kind:    ControlFrameTooLong,
			Message: "control frame payload exceeds 125 bytes",
		}
	}

	var mask [4]byte
	if masked {
		if len(buf) < offset+4 {
			return FrameHeader{}, 0, false, nil
		}
		copy(mask[:], buf[offset:offset+4])
		offset += 4
	}

	return FrameHeader{
		Fin:           fin,
		ReservedZero:  reservedZero,
		Opcode:        opcode,
		Masked:        masked,
		PayloadLength: payloadLength,
		PayloadOffset: offset,
		Mask:          mask,
	}, offset, true, nil
}
