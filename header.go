// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

// maxSafeLength is the ceiling this package enforces on payload lengths
// read off the wire, 2^53. A double-precision read of a 64-bit extended
// length field cannot losslessly represent values at or above this
// bound; an implementation built on native 64-bit integers could safely
// raise the ceiling to 2^63-1, but this package keeps the conservative
// bound so behavior does not depend on the width of the reader.
const maxSafeLength = uint64(1) << 53

// maxControlFramePayload is the RFC 6455 5.5 limit on control frame
// payloads (CLOSE/PING/PONG); the frame header's 7-bit base length field
// tops out at 125 for these opcodes.
const maxControlFramePayload = 125

// FrameHeader is the pure-data description of a decoded, or
// decoded-in-progress, WebSocket frame header. It is populated
// incrementally by Decoder as header bytes arrive.
type FrameHeader struct {
	Fin           bool
	ReservedZero  bool
	Opcode        Opcode
	Masked        bool
	PayloadLength uint64
	PayloadOffset int
	Mask          [4]byte
}

// IsContinuation reports whether this header's opcode is CONTINUATION.
func (h FrameHeader) IsContinuation() bool {
	return h.Opcode == OpContinuation
}
