// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"bytes"
	"testing"
)

func TestBuildFrameLayoutUnmasked(t *testing.T) {
	frame, err := buildFrame(OpText, []byte("Hello"), false)
	if err != nil {
		t.Fatalf("buildFrame: %v", err)
	}
	want := []byte{0x81, 0x05, 'H', 'e', 'l', 'l', 'o'}
	if !bytes.Equal(frame, want) {
		t.Fatalf("got % x, want % x", frame, want)
	}
}

func TestBuildFrameMasksPayload(t *testing.T) {
	frame, err := buildFrame(OpText, []byte("Hello"), true)
	if err != nil {
		t.Fatalf("buildFrame: %v", err)
	}
	if len(frame) != 2+4+5 {
		t.Fatalf("got %d bytes, want 11", len(frame))
	}
	if frame[1]&0x80 == 0 {
		t.Fatalf("mask bit not set")
	}
	var mask [4]byte
	copy(mask[:], frame[2:6])
	payload := append([]byte(nil), frame[6:]...)
	applyMask(payload, mask, 0)
	if string(payload) != "Hello" {
		t.Fatalf("unmasked payload = %q, want Hello", payload)
	}
}

func TestBuildFrameExtendedLengths(t *testing.T) {
	tests := []struct {
		length      int
		wantExtByte byte
		wantExtLen  int
	}{
		{0, 0, 0},
		{125, 125, 0},
		{126, 126, 2},
		{65535, 126, 2},
		{65536, 127, 8},
	}
	for _, tt := range tests {
		frame, err := buildFrame(OpBinary, bytes.Repeat([]byte{1}, tt.length), false)
		if err != nil {
			t.Fatalf("length=%d: buildFrame: %v", tt.length, err)
		}
		if frame[1] != tt.wantExtByte {
			t.Fatalf("length=%d: byte1=%d, want %d", tt.length, frame[1], tt.wantExtByte)
		}
		if len(frame) != 2+tt.wantExtLen+tt.length {
			t.Fatalf("length=%d: got %d bytes, want %d", tt.length, len(frame), 2+tt.wantExtLen+tt.length)
		}
	}
}

func TestBuildFrameAcceptsLargePayloadBelowCeiling(t *testing.T) {
	// A slice of exactly 2^53 bytes cannot be allocated in a test process;
	// this only checks that ordinary large payloads, well under the
	// ceiling, are not spuriously rejected.
	if _, err := buildFrame(OpBinary, make([]byte, 70000), false); err != nil {
		t.Fatalf("70000-byte payload should not be rejected: %v", err)
	}
}

func TestBuildPerOpcodeHelpers(t *testing.T) {
	helpers := []struct {
		build func([]byte, bool) ([]byte, error)
		op    Opcode
	}{
		{buildTextFrame, OpText},
		{buildBinaryFrame, OpBinary},
		{buildCloseFrame, OpClose},
		{buildPingFrame, OpPing},
		{buildPongFrame, OpPong},
		{buildContinuationFrame, OpContinuation},
	}
	for _, h := range helpers {
		frame, err := h.build(nil, false)
		if err != nil {
			t.Fatalf("opcode=%v: %v", h.op, err)
		}
		if Opcode(frame[0]&0x0F) != h.op {
			t.Fatalf("opcode=%v: got %v in frame", h.op, Opcode(frame[0]&0x0F))
		}
		if frame[0]&0x80 == 0 {
			t.Fatalf("opcode=%v: FIN bit not set", h.op)
		}
	}
}

// TestRoundTrip checks spec's round-trip property across opcodes, payload
// sizes and masking.
func TestRoundTrip(t *testing.T) {
	opcodes := []Opcode{OpText, OpBinary, OpPing, OpPong, OpClose, OpContinuation}
	sizes := []int{0, 1, 125, 126, 1000, 65535, 65536}
	for _, op := range opcodes {
		for _, size := range sizes {
			if op.IsControl() && size > 125 {
				continue // control frames cap at 125 bytes of payload
			}
			for _, masking := range []bool{false, true} {
				payload := bytes.Repeat([]byte{0xAB}, size)
				frame, err := buildFrame(op, payload, masking)
				if err != nil {
					t.Fatalf("op=%v size=%d masking=%v: buildFrame: %v", op, size, masking, err)
				}
				d, frames := newRecorder()
				if err := d.Feed(frame); err != nil {
					t.Fatalf("op=%v size=%d masking=%v: Feed: %v", op, size, masking, err)
				}
				if len(*frames) != 1 {
					t.Fatalf("op=%v size=%d masking=%v: got %d frames", op, size, masking, len(*frames))
				}
				got := (*frames)[0]
				if got.opcode != op || !bytes.Equal(got.payload, payload) {
					t.Fatalf("op=%v size=%d masking=%v: round-trip mismatch", op, size, masking)
				}
			}
		}
	}
}
