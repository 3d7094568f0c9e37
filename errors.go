// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import "errors"

// ErrorKind identifies which of the codec's four protocol violations (five,
// with the control-frame length check) a CodecError reports.
type ErrorKind int

const (
	// RsvNonZero: a reserved bit (RSV1/RSV2/RSV3) was set on an incoming header.
	RsvNonZero ErrorKind = iota
	// InvalidOpcode: the 4-bit opcode field did not name one of the six
	// opcodes defined by RFC 6455.
	InvalidOpcode
	// ExpectedFinal: a control opcode (CLOSE/PING/PONG) arrived with FIN=0.
	ExpectedFinal
	// UnsupportedLength: an extended length field described a payload at or
	// beyond 2^53 bytes.
	UnsupportedLength
	// ControlFrameTooLong: a control opcode declared a payload length over
	// the RFC 6455 5.5 limit of 125 bytes.
	ControlFrameTooLong
)

func (k ErrorKind) String() string {
	switch k {
	case RsvNonZero:
		return "RsvNonZero"
	case InvalidOpcode:
		return "InvalidOpcode"
	case ExpectedFinal:
		return "ExpectedFinal"
	case UnsupportedLength:
		return "UnsupportedLength"
	case ControlFrameTooLong:
		return "ControlFrameTooLong"
	default:
		return "Unknown"
	}
}

// CodecError is raised by the decoder on the first detected protocol
// violation, and by the encoder when asked to build an oversized frame.
// It is a small value type carrying just enough detail for a caller to react (typically by
// dropping the connection) and to log the specific RFC clause violated.
type CodecError struct {
	Kind    ErrorKind
	Message string
}

func (e *CodecError) Error() string {
	return "websocket: " + e.Message
}

// errDecoderDead is returned by Decoder.Feed once the decoder has raised a
// CodecError; per spec the decoder is then left in an unspecified state and
// must not receive further bytes.
var errDecoderDead = errors.New("websocket: feed called on a decoder that already raised an error")

// errCodecDead is the Codec-level analogue of errDecoderDead, returned once
// the façade has surfaced a decoder error on its error channel.
var errCodecDead = errors.New("websocket: feed called on a codec that already raised an error")

// ErrCloseSent is returned by WriteMessage, WriteControl and the Close
// method of a NextWriter writer once a close frame has been queued for
// writing on the connection; the façade-level
// analogue of the core's errCodecDead, for the one direction the core does
// not police itself.
var ErrCloseSent = errors.New("websocket: close sent")

// ErrInvalidFragmentation is returned by NextReader/ReadMessage when the
// peer's frame sequence violates fragmentation ordering: a CONTINUATION
// frame arriving with no fragmented message open, or a new data opcode
// arriving while one is still open. The core decoder does not police this
// (spec §9): it emits every frame individually regardless of ordering, so
// enforcement and reassembly both live here, at the façade.
var ErrInvalidFragmentation = errors.New("websocket: invalid fragmentation sequence")
