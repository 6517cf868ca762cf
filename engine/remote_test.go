// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"cogentcore.org/simenv/config"
	"cogentcore.org/simenv/math32"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer is a websocket engine that answers requests in the
// remote protocol. Step commands for "slow" block until release is
// closed, "fail" gets an error response and "skew" gets a wrong id.
type testServer struct {
	mu       sync.Mutex
	requests []request
	stepping chan struct{}
	release  chan struct{}
}

func newTestServer(t *testing.T) (*testServer, *config.Config) {
	ts := &testServer{stepping: make(chan struct{}, 1), release: make(chan struct{})}
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req request
			if json.Unmarshal(msg, &req) != nil {
				return
			}
			ts.mu.Lock()
			ts.requests = append(ts.requests, req)
			ts.mu.Unlock()
			resp := ts.answer(&req)
			if resp == nil {
				continue
			}
			b, _ := json.Marshal(resp)
			conn.WriteMessage(websocket.TextMessage, b)
		}
	}))
	t.Cleanup(srv.Close)

	host, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	cfg := config.New()
	cfg.Engine.Host = host
	cfg.Engine.Port, err = strconv.Atoi(port)
	require.NoError(t, err)
	cfg.Engine.Timeout = 2
	return ts, cfg
}

func (ts *testServer) answer(req *request) *response {
	resp := &response{ID: req.ID, OK: true}
	switch req.Type {
	case requestClose:
		return nil
	case requestStep:
		if _, ok := req.Commands["slow"]; ok {
			ts.stepping <- struct{}{}
			<-ts.release
		}
		if _, ok := req.Commands["fail"]; ok {
			resp.OK = false
			resp.Error = "no agent named fail"
			return resp
		}
		if _, ok := req.Commands["skew"]; ok {
			resp.ID += 100
		}
		ev := NewEvent()
		ev.Nodes["agent"] = NodeState{Position: [3]float32{1, 2, 3}, Rotation: [4]float32{0, 0, 0, 1}}
		fr := NewFrame(3, 2, 2)
		fr.Pix[5] = 200
		ev.Frames.Add("agent/camera", fr)
		resp.Event = ev
	}
	return resp
}

func (ts *testServer) types() []requestTypes {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	var tp []requestTypes
	for _, r := range ts.requests {
		tp = append(tp, r.Type)
	}
	return tp
}

func TestRemoteStep(t *testing.T) {
	ctx := context.Background()
	ts, cfg := newTestServer(t)
	r := NewRemote(cfg)

	_, err := r.Step(ctx, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, r.Initialize(ctx, []byte("glb"), DefaultOptions()))
	ev, err := r.Step(ctx, map[string][]Command{"agent": {NewCommand(AddForce, math32.Vec3(1, 0, 0))}})
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1, 2, 3}, ev.Nodes["agent"].Position)
	fr, ok := ev.Frames.ValueByKeyTry("agent/camera")
	require.True(t, ok)
	assert.Equal(t, uint8(200), fr.At(1, 0, 1))

	require.NoError(t, r.Reset(ctx))
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	_, err = r.Step(ctx, nil)
	assert.ErrorIs(t, err, ErrClosed)

	assert.Eventually(t, func() bool {
		return len(ts.types()) == 4
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []requestTypes{requestInitialize, requestStep, requestReset, requestClose}, ts.types())

	ts.mu.Lock()
	init := ts.requests[0]
	ts.mu.Unlock()
	assert.Equal(t, []byte("glb"), init.Scene)
	require.NotNil(t, init.Options)
	assert.Equal(t, 10, init.Options.FrameSkip)
	assert.Equal(t, r.Session.String(), init.Session)
}

func TestRemoteStepInProgress(t *testing.T) {
	ctx := context.Background()
	ts, cfg := newTestServer(t)
	r := NewRemote(cfg)
	defer r.Close()
	require.NoError(t, r.Initialize(ctx, nil, DefaultOptions()))

	done := make(chan error)
	go func() {
		_, err := r.Step(ctx, map[string][]Command{"slow": nil})
		done <- err
	}()
	<-ts.stepping
	_, err := r.Step(ctx, nil)
	assert.ErrorIs(t, err, ErrStepInProgress)
	assert.ErrorIs(t, r.Close(), ErrStepInProgress)
	close(ts.release)
	assert.NoError(t, <-done)

	_, err = r.Step(ctx, nil)
	assert.NoError(t, err)
	require.NoError(t, r.Close())
	_, err = r.Step(ctx, nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, r.Close())
}

func TestRemoteErrors(t *testing.T) {
	ctx := context.Background()
	_, cfg := newTestServer(t)
	r := NewRemote(cfg)
	defer r.Close()
	require.NoError(t, r.Initialize(ctx, nil, DefaultOptions()))
	assert.Error(t, r.Initialize(ctx, nil, DefaultOptions()))

	_, err := r.Step(ctx, map[string][]Command{"fail": nil})
	assert.ErrorContains(t, err, "no agent named fail")
	_, err = r.Step(ctx, map[string][]Command{"skew": nil})
	assert.ErrorContains(t, err, "does not match")
}

func TestRemoteConnectTimeout(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	cfg := config.New()
	cfg.Engine.Host = "127.0.0.1"
	cfg.Engine.Port = port
	r := NewRemote(cfg)
	r.Timeout = 200 * time.Millisecond
	err = r.Initialize(context.Background(), nil, DefaultOptions())
	assert.ErrorContains(t, err, "connecting")
	assert.NoError(t, r.Close())
}

func TestNew(t *testing.T) {
	cfg := config.New()
	e, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Remote{}, e)

	cfg.Engine.Kind = config.EngineFake
	e, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Fake{}, e)

	cfg.Engine.Kind = "unity"
	_, err = New(cfg)
	assert.Error(t, err)

	assert.Equal(t, Options{FrameRate: 30, FrameSkip: 10}, OptionsFromConfig(config.New()))
}
