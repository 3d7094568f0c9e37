// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

// Codec wires a Decoder as a byte sink and this package's encoder as a
// frame source. masking is fixed at construction by the owner, which
// knows which side of the connection it is: client-originated frames
// MUST be masked per RFC 6455 5.3, server-originated frames MUST NOT.
//
// A Codec is not safe for concurrent use.
type Codec struct {
	masking bool
	decoder *Decoder
	errCh   chan error
	dead    bool
}

// NewCodec returns a Codec that decodes inbound bytes and reports each
// completed frame to listener, and that masks outbound frames iff masking
// is true.
func NewCodec(masking bool, listener func(Opcode, []byte)) *Codec {
	return &Codec{
		masking: masking,
		decoder: NewDecoder(listener),
		errCh:   make(chan error, 1),
	}
}

// Feed is the decoder entry point: it hands chunk to the underlying
// Decoder and, on the first protocol violation, surfaces the error on
// Errors() exactly once and makes the Codec terminal.
func (c *Codec) Feed(chunk []byte) error {
	if c.dead {
		return errCodecDead
	}
	if err := c.decoder.Feed(chunk); err != nil {
		c.dead = true
		select {
		case c.errCh <- err:
		default:
		}
		return err
	}
	return nil
}

// Errors returns the Codec's error channel. It receives at most one value,
// the decoder error that made the Codec terminal.
func (c *Codec) Errors() <-chan error {
	return c.errCh
}

// Dead reports whether a prior Feed call raised a decoder error.
func (c *Codec) Dead() bool {
	return c.dead
}

// lastFin reports the FIN bit of the frame currently being reported to
// listener. It is only meaningful when called from inside the listener
// callback itself: Decoder.emitNow resets the header immediately after
// that call returns. The core's external interface intentionally reports
// only (opcode, payload) to listener (spec section 6); this accessor lets
// a same-package caller (the connection façade) recover the FIN bit for
// message-level reassembly (spec section 9) without changing that
// interface.
func (c *Codec) lastFin() bool {
	return c.decoder.header.Fin
}

func (c *Codec) buildFrame(opcode Opcode, payload []byte) ([]byte, error) {
	return buildFrame(opcode, payload, c.masking)
}

// BuildTextFrame, BuildBinaryFrame, BuildCloseFrame, BuildPingFrame,
// BuildPongFrame and BuildContinuationFrame are the encoder entry points:
// buildFrame with the opcode pre-bound and this Codec's masking policy
// applied.

func (c *Codec) BuildTextFrame(payload []byte) ([]byte, error) {
	return buildTextFrame(payload, c.masking)
}

func (c *Codec) BuildBinaryFrame(payload []byte) ([]byte, error) {
	return buildBinaryFrame(payload, c.masking)
}

func (c *Codec) BuildCloseFrame(payload []byte) ([]byte, error) {
	return buildCloseFrame(payload, c.masking)
}

func (c *Codec) BuildPingFrame(payload []byte) ([]byte, error) {
	return buildPingFrame(payload, c.masking)
}

func (c *Codec) BuildPongFrame(payload []byte) ([]byte, error) {
	return buildPongFrame(payload, c.masking)
}

func (c *Codec) BuildContinuationFrame(payload []byte) ([]byte, error) {
	return buildContinuationFrame(payload, c.masking)
}
