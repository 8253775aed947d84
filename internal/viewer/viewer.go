// Package viewer fetches the backend health payload once and renders it.
package viewer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/openmined/healthview/internal/healthsdk"
)

const (
	Title         = "Health App Frontend"
	StatusHeading = "API Status:"
)

// Fetcher performs the single health request.
type Fetcher interface {
	Fetch(ctx context.Context) healthsdk.Result
}

type Option func(*Viewer)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Viewer) {
		v.logger = logger
	}
}

// Viewer issues the health request at most once and keeps the last good payload.
type Viewer struct {
	client Fetcher
	logger *slog.Logger
	status statusCell

	once      sync.Once
	done      chan struct{}
	result    healthsdk.Result
	mounted   atomic.Bool
	unmounted atomic.Bool
}

func New(client Fetcher, opts ...Option) *Viewer {
	v := &Viewer{
		client: client,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load performs the fetch and applies its outcome. Only the first call issues a
// request; concurrent and later callers get the same Result.
// Errors are logged and never change the current status.
func (v *Viewer) Load(ctx context.Context) healthsdk.Result {
	v.once.Do(func() {
		defer close(v.done)
		v.result = v.client.Fetch(ctx)
		v.apply(v.result)
	})
	return v.result
}

func (v *Viewer) apply(res healthsdk.Result) {
	if res.Err != nil {
		v.logger.Error("API Error", "error", res.Err)
		return
	}
	if v.unmounted.Load() {
		v.logger.Debug("health status discarded after unmount")
		return
	}
	v.status.Set(res.Status)
}

// Mount starts Load in the background. Mounting again is a no-op.
func (v *Viewer) Mount(ctx context.Context) {
	if !v.mounted.CompareAndSwap(false, true) {
		return
	}
	go v.Load(ctx)
}

// Unmount detaches the viewer. A fetch that resolves afterwards is dropped.
func (v *Viewer) Unmount() {
	v.unmounted.Store(true)
}

// Done is closed once the single fetch has resolved.
func (v *Viewer) Done() <-chan struct{} {
	return v.done
}

// Status returns the current payload; the zero Status while unset.
func (v *Viewer) Status() healthsdk.Status {
	return v.status.Get()
}

// Render writes the current status with the heading.
func (v *Viewer) Render(w io.Writer) error {
	return RenderStatus(w, v.Status())
}

// RenderStatus writes the heading followed by the pretty-printed status, or null when unset.
func RenderStatus(w io.Writer, status healthsdk.Status) error {
	_, err := fmt.Fprintf(w, "%s\n\n%s\n%s\n", Title, StatusHeading, status.Pretty())
	return err
}
