// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"crypto/rand"
	"encoding/binary"
)

// buildFrame allocates and returns a single complete RFC 6455 frame for
// opcode carrying payload, with FIN=1 and all RSV bits zero. When masking
// is true, the frame carries a freshly drawn cryptographically random
// 4-byte mask and the payload region is masked in place.
func buildFrame(opcode Opcode, payload []byte, masking bool) ([]byte, error) {
	length := uint64(len(payload))

	var extLen int
	switch {
	case length <= 125:
		extLen = 0
	case length <= 65535:
		extLen = 2
	default:
		if length >= maxSafeLength {
			return nil, &CodecError{
				Kind:    UnsupportedLength,
				Message: "payload too large to encode without loss",
			}
		}
		extLen = 8
	}

	payloadOffset := 2 + extLen
	if masking {
		payloadOffset += 4
	}

	buf := make([]byte, payloadOffset+len(payload))
	buf[0] = 0x80 | byte(opcode)

	lenByte := byte(0)
	switch extLen {
	case 0:
		lenByte = byte(length)
	case 2:
		lenByte = 126
		binary.BigEndian.PutUint16(buf[2:4], uint16(length))
	case 8:
		lenByte = 127
		binary.BigEndian.PutUint64(buf[2:10], length)
	}
	if masking {
		lenByte |= 0x80
	}
	buf[1] = lenByte

	if masking {
		var maskKey [4]byte
		if _, err := rand.Read(maskKey[:]); err != nil {
			return nil, err
		}
		copy(buf[payloadOffset-4:payloadOffset], maskKey[:])
		copy(buf[payloadOffset:], payload)
		applyMask(buf[payloadOffset:], maskKey, 0)
		return buf, nil
	}

	copy(buf[payloadOffset:], payload)
	return buf, nil
}

// buildTextFrame, buildBinaryFrame, buildCloseFrame, buildPingFrame,
// buildPongFrame and buildContinuationFrame are buildFrame with the opcode
// pre-bound, following the six opcodes this package supports.

func buildTextFrame(payload []byte, masking bool) ([]byte, error) {
	return buildFrame(OpText, payload, masking)
}

func buildBinaryFrame(payload []byte, masking bool) ([]byte, error) {
	return buildFrame(OpBinary, payload, masking)
}

func buildCloseFrame(payload []byte, masking bool) ([]byte, error) {
	return buildFrame(OpClose, payload, masking)
}

func buildPingFrame(payload []byte, masking bool) ([]byte, error) {
	return buildFrame(OpPing, payload, masking)
}

func buildPongFrame(payload []byte, masking bool) ([]byte, error) {
	return buildFrame(OpPong, payload, masking)
}

func buildContinuationFrame(payload []byte, masking bool) ([]byte, error) {
	return buildFrame(OpContinuation, payload, masking)
}
