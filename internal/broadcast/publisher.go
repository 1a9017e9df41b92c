// Package broadcast publishes walk events to a remote socket.io viewer.
package broadcast

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/grid"
	"github.com/specialistvlad/gridwalk/internal/walk"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// EventName is the socket.io event every walk event is emitted under.
const EventName = "walk_event"

// DialTimeout bounds how long Dial waits for the connect acknowledgement.
const DialTimeout = 15 * time.Second

// ErrDisconnected is returned by Emit once the connection has dropped.
var ErrDisconnected = errors.New("broadcast: socket.io client is not connected")

// Publisher is a walk.Sink that forwards events over socket.io.
type Publisher struct {
	io *socket.Socket
}

var _ walk.Sink = (*Publisher)(nil)

// Dial connects to the socket.io server at rawURL and waits until the
// namespace accepts the connection.
func Dial(ctx context.Context, rawURL, namespace string, insecureSkipVerify bool) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("component", "broadcast", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("failed to parse URL: %q needs a scheme and a host", rawURL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to event viewer.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, ok := errs[0].(error)
		if !ok {
			err = fmt.Errorf("%v", errs[0])
		}
		connectChan <- err
	})

	io.Connect()

	timer := time.NewTimer(DialTimeout)
	defer timer.Stop()
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &Publisher{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", DialTimeout)
	}
}

// Emit sends ev to the viewer.
func (p *Publisher) Emit(ctx context.Context, ev walk.Event) error {
	if !p.io.Connected() {
		return ErrDisconnected
	}
	ctxlog.FromContext(ctx).Debug("Publishing walk event.", "walk", ev.Walk, "kind", string(ev.Kind), "sid", p.io.Id())
	p.io.Emit(EventName, eventPayload(ev))
	return nil
}

// Close disconnects from the viewer.
func (p *Publisher) Close() error {
	p.io.Disconnect()
	return nil
}

// eventPayload flattens ev into the JSON-friendly shape the viewer reads.
func eventPayload(ev walk.Event) map[string]any {
	out := map[string]any{
		"walk":  ev.Walk,
		"kind":  string(ev.Kind),
		"start": coord(ev.Start),
		"goal":  coord(ev.Goal),
	}
	switch ev.Kind {
	case walk.EventStep:
		out["index"] = ev.Index
		out["total"] = ev.Total
		out["pos"] = coord(ev.Pos)
		out["label"] = label(ev.Payload)
	case walk.EventPlaced, walk.EventArrived:
		out["pos"] = coord(ev.Pos)
		out["label"] = label(ev.Payload)
	}
	return out
}

func coord(c grid.Coord) map[string]any {
	return map[string]any{"x": c.X, "y": c.Y}
}

func label(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
