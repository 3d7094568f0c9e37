// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestConnReadMessageSimple(t *testing.T) {
	clientNet, serverNet := net.Pipe()
	c := newConn(clientNet, false, 0, 0)
	defer c.Close()

	frame, err := buildTextFrame([]byte("hello"), false)
	if err != nil {
		t.Fatalf("buildTextFrame: %v", err)
	}
	go serverNet.Write(frame)

	mt, p, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if mt != OpText || string(p) != "hello" {
		t.Fatalf("got (%v, %q), want (text, hello)", mt, p)
	}
}

func TestConnFragmentedMessageReassembly(t *testing.T) {
	clientNet, serverNet := net.Pipe()
	c := newConn(clientNet, false, 0, 0)
	defer c.Close()

	// FIN=0 TEXT "Hel" then FIN=1 CONTINUATION "lo", both unmasked
	// (server-originated), built by hand since buildFrame always emits
	// FIN=1 frames.
	first := []byte{0x01, 0x03, 'H', 'e', 'l'}
	second := []byte{0x80, 0x02, 'l', 'o'}
	go func() {
		serverNet.Write(first)
		serverNet.Write(second)
	}()

	mt, p, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if mt != OpText || string(p) != "Hello" {
		t.Fatalf("got (%v, %q), want (text, Hello)", mt, p)
	}
}

func TestConnContinuationWithoutOpenMessageIsRejected(t *testing.T) {
	clientNet, serverNet := net.Pipe()
	c := newConn(clientNet, false, 0, 0)
	defer c.Close()

	frame := []byte{0x80, 0x00} // FIN=1, CONTINUATION, empty payload
	go serverNet.Write(frame)

	_, _, err := c.ReadMessage()
	if err != ErrInvalidFragmentation {
		t.Fatalf("got %v, want ErrInvalidFragmentation", err)
	}
}

func TestConnPingGetsAutoPong(t *testing.T) {
	clientNet, serverNet := net.Pipe()
	c := newConn(clientNet, false, 0, 0)
	defer c.Close()

	errCh := make(chan error, 1)
	go func() {
		pingFrame, err := buildPingFrame([]byte("hi"), false)
		if err != nil {
			errCh <- err
			return
		}
		if _, err := serverNet.Write(pingFrame); err != nil {
			errCh <- err
			return
		}

		header := make([]byte, 2)
		if _, err := io.ReadFull(serverNet, header); err != nil {
			errCh <- err
			return
		}
		if Opcode(header[0]&0x0F) != OpPong {
			errCh <- fmt.Errorf("got opcode %d, want pong", header[0]&0x0F)
			return
		}
		masked := header[1]&0x80 != 0
		payloadLen := int(header[1] & 0x7F)
		var mask [4]byte
		if masked {
			if _, err := io.ReadFull(serverNet, mask[:]); err != nil {
				errCh <- err
				return
			}
		}
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(serverNet, payload); err != nil {
			errCh <- err
			return
		}
		if masked {
			applyMask(payload, mask, 0)
		}
		if string(payload) != "hi" {
			errCh <- fmt.Errorf("pong payload = %q, want hi", payload)
			return
		}

		textFrame, err := buildTextFrame([]byte("done"), false)
		if err != nil {
			errCh <- err
			return
		}
		if _, err := serverNet.Write(textFrame); err != nil {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	mt, p, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if mt != OpText || string(p) != "done" {
		t.Fatalf("got (%v, %q), want (text, done)", mt, p)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server goroutine: %v", err)
	}
}

func TestConnCloseReturnsCloseError(t *testing.T) {
	clientNet, serverNet := net.Pipe()
	c := newConn(clientNet, false, 0, 0)

	closeFrame, err := buildCloseFrame(FormatCloseMessage(CloseGoingAway, "bye"), false)
	if err != nil {
		t.Fatalf("buildCloseFrame: %v", err)
	}

	done := make(chan struct{})
	go func() {
		serverNet.Write(closeFrame)
		io.Copy(io.Discard, serverNet) // drain the echoed close reply
		close(done)
	}()

	_, _, err = c.ReadMessage()
	var closeErr *CloseError
	if !errors.As(err, &closeErr) {
		t.Fatalf("got err %v (%T), want *CloseError", err, err)
	}
	if closeErr.Code != CloseGoingAway || closeErr.Text != "bye" {
		t.Fatalf("got %+v, want {%d bye}", closeErr, CloseGoingAway)
	}
	c.Close()
	<-done
}

func TestConnWriteMessageIsMasked(t *testing.T) {
	clientNet, serverNet := net.Pipe()
	c := newConn(clientNet, false, 0, 0)
	defer c.Close()

	done := make(chan error, 1)
	go func() {
		header := make([]byte, 2)
		if _, err := io.ReadFull(serverNet, header); err != nil {
			done <- err
			return
		}
		if header[1]&0x80 == 0 {
			done <- fmt.Errorf("MASK bit not set on client-originated frame")
			return
		}
		payloadLen := int(header[1] & 0x7F)
		rest := make([]byte, 4+payloadLen)
		if _, err := io.ReadFull(serverNet, rest); err != nil {
			done <- err
			return
		}
		done <- nil
	}()

	if err := c.WriteMessage(OpText, []byte("hi")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("server goroutine: %v", err)
	}
}

func TestConnNextWriterSendsOnClose(t *testing.T) {
	clientNet, serverNet := net.Pipe()
	c := newConn(clientNet, false, 0, 0)
	defer c.Close()

	drained := make(chan struct{})
	go func() {
		io.Copy(io.Discard, serverNet)
		close(drained)
	}()

	w, err := c.NextWriter(OpText)
	if err != nil {
		t.Fatalf("NextWriter: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err == nil {
		t.Fatalf("second Close: want error, got nil")
	}
}

func TestConnWriteControlAfterCloseSentReturnsErrCloseSent(t *testing.T) {
	clientNet, serverNet := net.Pipe()
	c := newConn(clientNet, false, 0, 0)
	defer c.Close()

	go io.Copy(io.Discard, serverNet)

	if err := c.WriteControl(OpClose, FormatCloseMessage(CloseNormalClosure, ""), time.Now().Add(time.Second)); err != nil {
		t.Fatalf("WriteControl(close): %v", err)
	}
	if err := c.WriteControl(OpPing, nil, time.Now().Add(time.Second)); err != ErrCloseSent {
		t.Fatalf("got %v, want ErrCloseSent", err)
	}
}

func TestConnIDIsAssigned(t *testing.T) {
	clientNet, serverNet := net.Pipe()
	defer serverNet.Close()
	c := newConn(clientNet, false, 0, 0)
	defer c.Close()

	if c.ID() == uuid.Nil {
		t.Fatalf("ID() returned the nil UUID")
	}
}
