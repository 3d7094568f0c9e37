// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"
)

// Conn represents a WebSocket connection: a net.Conn plus the Codec that
// turns its byte stream into frames and back. A Conn supports a single
// concurrent caller to the read methods (NextReader, ReadMessage,
// SetReadDeadline) and a single concurrent caller to the write methods
// (NextWriter, WriteMessage, SetWriteDeadline). Close and WriteControl may
// be called concurrently with all other methods. WriteControl goes through
// the same FIFO write queue as data writes, so a control frame can never
// tear a data frame in half on the wire; Close lets that queue drain before
// closing the underlying connection.
type Conn struct {
	conn        net.Conn
	id          uuid.UUID
	isServer    bool
	subprotocol string

	br      *bufio.Reader
	readBuf []byte

	writeBuf      []byte
	writeDeadline time.Time

	codec   *Codec
	pending []inboundFrame

	pingHandler  func(appData string) error
	pongHandler  func(appData string) error
	closeHandler func(code int, text string) error

	writeMu     sync.Mutex
	writeCond   *sync.Cond
	writeQueue  *queue.Queue
	writeErr    error
	closeSent   bool
	writerDone  bool
	writeLoopWg sync.WaitGroup
}

type inboundFrame struct {
	opcode  Opcode
	payload []byte
	fin     bool
}

type writeJob struct {
	data     []byte
	deadline time.Time
	done     chan error
}

// newConn wraps netConn in a Conn. isServer is always false in this
// client-only build; it is threaded through (rather than hardcoded) so the
// masking policy handed to NewCodec reads the same way the RFC states it:
// client frames masked, server frames not.
func newConn(netConn net.Conn, isServer bool, readBufferSize, writeBufferSize int) *Conn {
	if readBufferSize <= 0 {
		readBufferSize = 4096
	}
	if writeBufferSize <= 0 {
		writeBufferSize = 4096
	}

	c := &Conn{
		conn:     netConn,
		id:       uuid.New(),
		isServer: isServer,
		writeBuf: make([]byte, 0, writeBufferSize),
		readBuf:  make([]byte, readBufferSize),

		writeQueue: queue.New(),
	}
	c.br = bufio.NewReaderSize(netConn, readBufferSize)
	c.writeCond = sync.NewCond(&c.writeMu)
	c.codec = NewCodec(!isServer, c.onFrame)
	c.pingHandler = c.defaultPingHandler
	c.writeLoopWg.Add(1)
	go c.writeLoop()
	return c
}

// ID returns the connection's unique identity, assigned once at
// construction and stable for the connection's lifetime.
func (c *Conn) ID() uuid.UUID { return c.id }

// Subprotocol returns the negotiated protocol for the connection, if any.
func (c *Conn) Subprotocol() string { return c.subprotocol }

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// UnderlyingConn returns the internal net.Conn, for callers that need TCP
// options unavailable through Conn's own methods.
func (c *Conn) UnderlyingConn() net.Conn { return c.conn }

// SetReadDeadline sets the deadline applied to the underlying connection
// for future reads.
func (c *Conn) SetReadDeadline(t time.Time) error { return c.conn.SetReadDeadline(t) }

// SetWriteDeadline sets the deadline applied by the write loop to the data
// frames written after this call. Frames sent with WriteControl use their
// own deadline instead.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	c.writeDeadline = t
	return nil
}

// onFrame is the Codec's listener: invoked synchronously, inside Feed, once
// per completed frame. It records the FIN bit alongside the frame (spec
// section 9's resolved open question) by reading it off the Codec while
// the decoder's header for this frame is still live.
func (c *Conn) onFrame(op Opcode, payload []byte) {
	c.pending = append(c.pending, inboundFrame{opcode: op, payload: payload, fin: c.codec.lastFin()})
}

// fillPending reads off the wire until at least one frame is queued, a
// decoder error occurs, or the connection reports a read error.
func (c *Conn) fillPending() error {
	if len(c.pending) > 0 {
		return nil
	}
	for {
		n, err := c.br.Read(c.readBuf)
		if n > 0 {
			if ferr := c.codec.Feed(c.readBuf[:n]); ferr != nil {
				return ferr
			}
			if len(c.pending) > 0 {
				return nil
			}
		}
		if err != nil {
			return err
		}
	}
}

func (c *Conn) nextFrame() (inboundFrame, error) {
	if err := c.fillPending(); err != nil {
		return inboundFrame{}, err
	}
	f := c.pending[0]
	c.pending = c.pending[1:]
	return f, nil
}

// NextReader returns the type and a reader for the next data message,
// coalescing CONTINUATION frames per the FIN bit (spec section 9). Ping
// and pong frames are consumed and dispatched to their handlers without
// being returned; a close frame ends the connection's read side with a
// *CloseError.
func (c *Conn) NextReader() (Opcode, io.Reader, error) {
	for {
		f, err := c.nextFrame()
		if err != nil {
			return 0, nil, err
		}
		switch {
		case f.opcode == OpPing:
			if err := c.handlePing(string(f.payload)); err != nil {
				return 0, nil, err
			}
		case f.opcode == OpPong:
			if err := c.handlePong(string(f.payload)); err != nil {
				return 0, nil, err
			}
		case f.opcode == OpClose:
			return 0, nil, c.handleClose(f.payload)
		case f.opcode == OpContinuation:
			return 0, nil, ErrInvalidFragmentation
		default:
			return c.readMessage(f)
		}
	}
}

// readMessage coalesces first and any following CONTINUATION frames into
// one logical message, enforcing that only CONTINUATION frames may follow
// until FIN=1 (spec section 9: fragmentation ordering).
func (c *Conn) readMessage(first inboundFrame) (Opcode, io.Reader, error) {
	var buf bytes.Buffer
	buf.Write(first.payload)
	fin := first.fin

	for !fin {
		f, err := c.nextFrame()
		if err != nil {
			return 0, nil, err
		}
		switch {
		case f.opcode == OpPing:
			if err := c.handlePing(string(f.payload)); err != nil {
				return 0, nil, err
			}
		case f.opcode == OpPong:
			if err := c.handlePong(string(f.payload)); err != nil {
				return 0, nil, err
			}
		case f.opcode == OpClose:
			return 0, nil, c.handleClose(f.payload)
		case f.opcode != OpContinuation:
			return 0, nil, ErrInvalidFragmentation
		default:
			buf.Write(f.payload)
			fin = f.fin
		}
	}
	return first.opcode, bytes.NewReader(buf.Bytes()), nil
}

// ReadMessage reads the next data message in its entirety.
func (c *Conn) ReadMessage() (Opcode, []byte, error) {
	mt, r, err := c.NextReader()
	if err != nil {
		return 0, nil, err
	}
	p, err := io.ReadAll(r)
	return mt, p, err
}

func (c *Conn) handlePing(appData string) error {
	h := c.pingHandler
	if h == nil {
		h = c.defaultPingHandler
	}
	return h(appData)
}

func (c *Conn) defaultPingHandler(appData string) error {
	err := c.WriteControl(OpPong, []byte(appData), time.Now().Add(time.Second))
	if err == ErrCloseSent {
		return nil
	}
	return err
}

func (c *Conn) handlePong(appData string) error {
	if c.pongHandler == nil {
		return nil
	}
	return c.pongHandler(appData)
}

func (c *Conn) handleClose(payload []byte) error {
	code, text := ParseCloseMessage(payload)
	if c.closeHandler != nil {
		if err := c.closeHandler(code, text); err != nil {
			return err
		}
	} else {
		_ = c.WriteControl(OpClose, FormatCloseMessage(CloseNormalClosure, ""), time.Now().Add(time.Second))
	}
	return &CloseError{Code: code, Text: text}
}

// SetPingHandler sets the callback invoked for received ping frames. A nil
// handler restores the default, which replies with a pong carrying the
// same application data.
func (c *Conn) SetPingHandler(h func(appData string) error) {
	if h == nil {
		h = c.defaultPingHandler
	}
	c.pingHandler = h
}

// SetPongHandler sets the callback invoked for received pong frames.
func (c *Conn) SetPongHandler(h func(appData string) error) { c.pongHandler = h }

// SetCloseHandler sets the callback invoked for a received close frame,
// overriding the default behavior of echoing a normal-closure close frame.
func (c *Conn) SetCloseHandler(h func(code int, text string) error) { c.closeHandler = h }

// WriteMessage builds and sends a complete data message as one frame.
// messageType must be OpText or OpBinary.
func (c *Conn) WriteMessage(messageType Opcode, data []byte) error {
	var frame []byte
	var err error
	switch messageType {
	case OpText:
		frame, err = c.codec.BuildTextFrame(data)
	case OpBinary:
		frame, err = c.codec.BuildBinaryFrame(data)
	default:
		return fmt.Errorf("websocket: unsupported message type %v for WriteMessage", messageType)
	}
	if err != nil {
		return err
	}
	return c.writeFrame(frame, c.writeDeadline, false)
}

// WriteControl sends a control frame (close, ping or pong), applying
// deadline to the underlying connection for that write only. It may be
// called concurrently with NextWriter/WriteMessage and with itself; all
// writes share one FIFO so frames are never interleaved on the wire.
func (c *Conn) WriteControl(messageType Opcode, data []byte, deadline time.Time) error {
	var frame []byte
	var err error
	switch messageType {
	case OpClose:
		frame, err = c.codec.BuildCloseFrame(data)
	case OpPing:
		frame, err = c.codec.BuildPingFrame(data)
	case OpPong:
		frame, err = c.codec.BuildPongFrame(data)
	default:
		return fmt.Errorf("websocket: unsupported control message type %v", messageType)
	}
	if err != nil {
		return err
	}
	return c.writeFrame(frame, deadline, messageType == OpClose)
}

// writeFrame enqueues a built frame on the FIFO drained by writeLoop and
// blocks until that frame has been written (or the connection has failed).
func (c *Conn) writeFrame(frame []byte, deadline time.Time, isClose bool) error {
	c.writeMu.Lock()
	if c.writeErr != nil {
		err := c.writeErr
		c.writeMu.Unlock()
		return err
	}
	if c.closeSent {
		c.writeMu.Unlock()
		return ErrCloseSent
	}
	if isClose {
		c.closeSent = true
	}
	done := make(chan error, 1)
	c.writeQueue.Add(writeJob{data: frame, deadline: deadline, done: done})
	c.writeCond.Signal()
	c.writeMu.Unlock()
	return <-done
}

// writeLoop is the single writer goroutine draining the FIFO write queue,
// started once per connection in newConn and stopped by Close. It signals
// writeLoopWg when the queue is fully drained and it is about to exit, so
// Close can wait for that drain before closing the underlying connection.
func (c *Conn) writeLoop() {
	defer c.writeLoopWg.Done()
	for {
		c.writeMu.Lock()
		for c.writeQueue.Length() == 0 && !c.writerDone {
			c.writeCond.Wait()
		}
		if c.writeQueue.Length() == 0 && c.writerDone {
			c.writeMu.Unlock()
			return
		}
		job := c.writeQueue.Remove().(writeJob)
		c.writeMu.Unlock()

		if !job.deadline.IsZero() {
			c.conn.SetWriteDeadline(job.deadline)
		} else {
			c.conn.SetWriteDeadline(time.Time{})
		}
		_, err := c.conn.Write(job.data)
		if err != nil {
			c.writeMu.Lock()
			c.writeErr = err
			c.writeMu.Unlock()
		}
		job.done <- err
	}
}

// Close stops the write loop, letting any already-queued frames drain,
// then closes the underlying connection.
func (c *Conn) Close() error {
	c.writeMu.Lock()
	c.writerDone = true
	c.writeCond.Signal()
	c.writeMu.Unlock()
	c.writeLoopWg.Wait()
	return c.conn.Close()
}

// messageWriter is returned by NextWriter. The core encoder always builds
// FIN=1 frames (spec section 4.3: buildFrame has no fragmentation
// parameter), so unlike a streaming writer, messageWriter buffers the
// whole message and writes it as a single frame on Close.
type messageWriter struct {
	conn        *Conn
	messageType Opcode
	buf         bytes.Buffer
	closed      bool
}

// NextWriter returns a writer for a new data message. messageType must be
// OpText or OpBinary. The message is not sent until Close is called.
func (c *Conn) NextWriter(messageType Opcode) (io.WriteCloser, error) {
	switch messageType {
	case OpText, OpBinary:
	default:
		return nil, fmt.Errorf("websocket: unsupported message type %v for NextWriter", messageType)
	}
	return &messageWriter{conn: c, messageType: messageType}, nil
}

func (w *messageWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("websocket: write to closed message writer")
	}
	return w.buf.Write(p)
}

func (w *messageWriter) Close() error {
	if w.closed {
		return errors.New("websocket: message writer already closed")
	}
	w.closed = true
	return w.conn.WriteMessage(w.messageType, w.buf.Bytes())
}
