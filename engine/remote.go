// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"cogentcore.org/simenv/base/errors"
	"cogentcore.org/simenv/base/exec"
	"cogentcore.org/simenv/base/websocket"
	"cogentcore.org/simenv/config"
	"github.com/google/uuid"
)

// requestTypes are the types of requests sent to a remote engine.
type requestTypes string

const (
	requestInitialize requestTypes = "initialize"
	requestStep       requestTypes = "step"
	requestReset      requestTypes = "reset"
	requestClose      requestTypes = "close"
)

// request is one JSON request sent to a remote engine.
type request struct {
	Session  string               `json:"session"`
	ID       uint64               `json:"id"`
	Type     requestTypes         `json:"type"`
	Scene    []byte               `json:"scene,omitempty"`
	Options  *Options             `json:"options,omitempty"`
	Commands map[string][]Command `json:"commands,omitempty"`
}

// response is one JSON response received from a remote engine.
type response struct {
	ID    uint64 `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Event *Event `json:"event,omitempty"`
}

// Remote is an [Engine] that talks to an engine process over a
// websocket, sending one JSON request and reading one JSON response
// per call. If [Remote.Exe] is set, Initialize launches the process
// with a --port argument before connecting.
type Remote struct {

	// Exe is the engine command line to launch, if any.
	// It is split with shell quoting rules.
	Exe string

	// Host is the host the engine listens on.
	Host string

	// Port is the port the engine listens on.
	Port int

	// Timeout bounds connecting to the engine and each request
	// when the caller context has no deadline.
	Timeout time.Duration

	// Exec is the configuration used to launch [Remote.Exe].
	Exec *exec.Config

	// Session is the session id sent with every request.
	Session uuid.UUID

	client *websocket.Client
	cmd    *exec.Cmd
	nextID uint64

	mu     sync.Mutex
	busy   bool
	closed bool
}

// NewRemote returns a new [Remote] using the engine settings of the given config.
func NewRemote(cfg *config.Config) *Remote {
	return &Remote{
		Exe:     cfg.Engine.Exe,
		Host:    cfg.Engine.Host,
		Port:    cfg.Engine.Port,
		Timeout: cfg.Engine.ConnectTimeout(),
		Exec:    exec.Major(),
		Session: uuid.New(),
	}
}

// URL returns the websocket URL of the engine.
func (r *Remote) URL() string {
	return "ws://" + net.JoinHostPort(r.Host, strconv.Itoa(r.Port)) + "/"
}

// acquire marks the engine busy, returning [ErrClosed] or
// [ErrStepInProgress] if that is not possible.
func (r *Remote) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.busy {
		return ErrStepInProgress
	}
	r.busy = true
	return nil
}

func (r *Remote) release() {
	r.mu.Lock()
	r.busy = false
	r.mu.Unlock()
}

func (r *Remote) Initialize(ctx context.Context, description []byte, opts Options) error {
	if err := r.acquire(); err != nil {
		return err
	}
	defer r.release()
	if r.client != nil {
		return fmt.Errorf("engine.Remote.Initialize: already initialized")
	}
	if r.Exe != "" {
		ex := r.Exec
		if ex == nil {
			ex = exec.Major()
		}
		cmd, err := ex.StartLine(r.Exe, "--port", strconv.Itoa(r.Port))
		if err != nil {
			return fmt.Errorf("engine.Remote.Initialize: launching engine: %w", err)
		}
		r.cmd = cmd
		slog.Info("launched engine", "exe", r.Exe, "pid", cmd.Process.Pid)
	}
	client, err := r.connect(ctx)
	if err != nil {
		r.killProcess()
		return err
	}
	r.client = client
	_, err = r.roundTrip(ctx, &request{Type: requestInitialize, Scene: description, Options: &opts})
	return err
}

// connect dials the engine until it accepts the connection or the
// timeout expires, since a freshly launched engine takes time to listen.
func (r *Remote) connect(ctx context.Context) (*websocket.Client, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	delay := 50 * time.Millisecond
	for {
		client, err := websocket.Connect(ctx, r.URL())
		if err == nil {
			slog.Debug("connected to engine", "url", r.URL(), "session", r.Session)
			return client, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("engine.Remote: connecting to %s: %w", r.URL(), errors.Join(err, ctx.Err()))
		case <-time.After(delay):
		}
		delay = min(2*delay, time.Second)
	}
}

func (r *Remote) Step(ctx context.Context, commands map[string][]Command) (*Event, error) {
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()
	if r.client == nil {
		return nil, ErrNotInitialized
	}
	resp, err := r.roundTrip(ctx, &request{Type: requestStep, Commands: commands})
	if err != nil {
		return nil, err
	}
	if resp.Event == nil {
		return nil, fmt.Errorf("engine.Remote.Step: response %d has no event", resp.ID)
	}
	if err := resp.Event.Validate(); err != nil {
		return nil, fmt.Errorf("engine.Remote.Step: %w", err)
	}
	return resp.Event, nil
}

func (r *Remote) Reset(ctx context.Context) error {
	if err := r.acquire(); err != nil {
		return err
	}
	defer r.release()
	if r.client == nil {
		return ErrNotInitialized
	}
	_, err := r.roundTrip(ctx, &request{Type: requestReset})
	return err
}

// Close tells the engine to shut down, closes the connection and
// stops any launched engine process. It returns [ErrStepInProgress]
// without closing if another call is in progress.
func (r *Remote) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	if r.busy {
		r.mu.Unlock()
		return ErrStepInProgress
	}
	r.closed = true
	r.busy = true
	r.mu.Unlock()

	var errs []error
	if r.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := r.send(ctx, &request{Type: requestClose}); err != nil {
			slog.Debug("engine close request failed", "err", err)
		}
		cancel()
		errs = append(errs, r.client.Close())
	}
	errs = append(errs, r.killProcess())
	return errors.Join(errs...)
}

func (r *Remote) killProcess() error {
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	cmd := r.cmd
	r.cmd = nil
	if err := cmd.Process.Kill(); err != nil {
		return err
	}
	cmd.Wait()
	return nil
}

func (r *Remote) send(ctx context.Context, req *request) error {
	r.nextID++
	req.ID = r.nextID
	req.Session = r.Session.String()
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return r.client.Send(ctx, websocket.TextMessage, b)
}

// roundTrip sends the request and reads its response.
func (r *Remote) roundTrip(ctx context.Context, req *request) (*response, error) {
	if _, ok := ctx.Deadline(); !ok && r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	if err := r.send(ctx, req); err != nil {
		return nil, fmt.Errorf("engine.Remote %s: sending: %w", req.Type, err)
	}
	_, msg, err := r.client.Receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine.Remote %s: receiving: %w", req.Type, err)
	}
	resp := &response{}
	if err := json.Unmarshal(msg, resp); err != nil {
		return nil, fmt.Errorf("engine.Remote %s: decoding response: %w", req.Type, err)
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("engine.Remote %s: response id %d does not match request id %d", req.Type, resp.ID, req.ID)
	}
	if !resp.OK {
		return nil, fmt.Errorf("engine.Remote %s: engine error: %s", req.Type, resp.Error)
	}
	return resp, nil
}
