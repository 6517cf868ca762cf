// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package websocket provides a synchronous WebSocket client used to
// talk to a simulation engine process.
package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageTypes are the types of messages that can be sent and received.
type MessageTypes int

const (
	// TextMessage is a UTF-8 text message, such as JSON.
	TextMessage MessageTypes = websocket.TextMessage

	// BinaryMessage is a binary data message.
	BinaryMessage MessageTypes = websocket.BinaryMessage
)

// ErrClosed is returned by [Client] methods after [Client.Close].
var ErrClosed = errors.New("websocket: client closed")

// Client represents a WebSocket client connection.
// You can use [Connect] to create a new Client.
// Send and Receive may be called from different goroutines, but
// each of them must not be called concurrently with itself.
type Client struct {

	// conn is the underlying WebSocket connection.
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// Connect connects to a WebSocket server at the given url and returns a [Client].
// The context bounds the handshake.
func Connect(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Send sends a message to the WebSocket server with the given type and message.
func (c *Client) Send(ctx context.Context, typ MessageTypes, msg []byte) error {
	if c.isClosed() {
		return ErrClosed
	}
	if dl, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(dl)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return c.conn.WriteMessage(int(typ), msg)
}

// Receive blocks until the next message is read from the server or
// the context is done. When the context ends first the connection is
// no longer usable, as gorilla connections do not support resuming
// an interrupted read.
func (c *Client) Receive(ctx context.Context) (MessageTypes, []byte, error) {
	if c.isClosed() {
		return 0, nil, ErrClosed
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()
	typ, msg, err := c.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, err
	}
	return MessageTypes(typ), msg, nil
}

// Close cleanly closes the WebSocket connection. It is safe to call
// more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	werr := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	cerr := c.conn.Close()
	if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
		return werr
	}
	return cerr
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
