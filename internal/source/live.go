package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"

	"github.com/edosstack/edos-console/internal/feed"
	"github.com/edosstack/edos-console/internal/metrics"
	"github.com/edosstack/edos-console/internal/models"
	"github.com/edosstack/edos-console/internal/normalize"
	"github.com/edosstack/edos-console/internal/utils"
)

// LiveSource consumes a duplex feed subscription. It runs until the stream
// ends or the context is cancelled; it never retries on its own, the caller
// decides when to reconnect.
type LiveSource struct {
	Endpoint    string
	DialTimeout time.Duration
	DialOpts    []grpc.DialOption
	Normalizer  *normalize.Normalizer
	Deliver     func(models.Event) bool
	SetState    func(ConnState)
	Logger      *slog.Logger
}

// Run connects, subscribes, and pumps frames into the normalizer.
func (l *LiveSource) Run(ctx context.Context) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	setState := l.SetState
	if setState == nil {
		setState = func(ConnState) {}
	}

	setState(StateConnecting)

	conn, err := feed.Dial(l.Endpoint, l.DialOpts...)
	if err != nil {
		setState(StateDisconnected)
		return utils.NewAppError("source.live.dial", "dial feed endpoint", err)
	}
	defer conn.Close()

	dialTimeout := l.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	// The client connection is lazy; force the transport up and bound the
	// wait separately from the stream lifetime.
	if err := waitReady(ctx, conn, dialTimeout); err != nil {
		setState(StateDisconnected)
		return utils.NewAppError("source.live.connect", "connect to feed endpoint", err)
	}

	stream, err := feed.Subscribe(ctx, conn)
	if err != nil {
		setState(StateDisconnected)
		return utils.NewAppError("source.live.subscribe", "open feed stream", err)
	}
	if err := stream.Send(&feed.Frame{Type: feed.TypeSubscribe, Timestamp: time.Now().UTC()}); err != nil {
		setState(StateDisconnected)
		return utils.NewAppError("source.live.subscribe", "send subscribe frame", err)
	}

	setState(StateConnected)
	logger.Info("feed stream established", slog.String("endpoint", l.Endpoint))

	for {
		frame, err := stream.Recv()
		if err != nil {
			setState(StateDisconnected)
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return utils.NewAppError("source.live.recv", "read feed frame", err)
		}
		if frame.Type == feed.TypeSubscribe {
			continue
		}
		for _, payload := range frame.Payloads() {
			if normalize.Fallback(payload) {
				metrics.ObserveFallback()
			}
			l.Deliver(l.Normalizer.Normalize(payload))
		}
	}
}

func waitReady(ctx context.Context, conn *grpc.ClientConn, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn.Connect()
	for {
		state := conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if !conn.WaitForStateChange(ctx, state) {
			return ctx.Err()
		}
	}
}
