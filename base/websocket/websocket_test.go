// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoServer(t *testing.T) string {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			typ, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(msg) == "silent" {
				continue
			}
			conn.WriteMessage(typ, msg)
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSendReceive(t *testing.T) {
	ctx := context.Background()
	c, err := Connect(ctx, echoServer(t))
	require.NoError(t, err)

	require.NoError(t, c.Send(ctx, TextMessage, []byte(`{"type":"step"}`)))
	typ, msg, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, TextMessage, typ)
	assert.Equal(t, `{"type":"step"}`, string(msg))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send(ctx, TextMessage, nil), ErrClosed)
	_, _, err = c.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReceiveTimeout(t *testing.T) {
	c, err := Connect(context.Background(), echoServer(t))
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, c.Send(ctx, TextMessage, []byte("silent")))
	_, _, err = c.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
