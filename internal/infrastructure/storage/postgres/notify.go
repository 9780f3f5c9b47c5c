package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"peopledesk/pkg/logger"
)

// DefaultNotifyChannel is the NOTIFY channel screens are reloaded from.
const DefaultNotifyChannel = "peopledesk_reload"

const (
	notifyWait    = 30 * time.Second
	notifyBackoff = time.Second
)

// ReloadFunc is called with the screen named in a notification payload; an
// empty screen means every screen.
type ReloadFunc func(ctx context.Context, screen string)

// Listener reloads screens when the database sends
// NOTIFY <channel>, '<screen>'.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	reload  ReloadFunc
	log     *logger.Logger
}

// NewListener creates a listener on channel.
func NewListener(pool *pgxpool.Pool, channel string, reload ReloadFunc, log *logger.Logger) *Listener {
	if channel == "" {
		channel = DefaultNotifyChannel
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Listener{
		pool:    pool,
		channel: channel,
		reload:  reload,
		log:     log.WithComponent("pg-listener").With("channel", channel),
	}
}

// Run holds a dedicated connection and dispatches notifications until ctx is
// cancelled. Lost connections are re-acquired.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, err := l.pool.Acquire(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.log.Errorw("failed to acquire connection for LISTEN", "error", err)
			sleep(ctx, notifyBackoff)
			continue
		}

		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
			conn.Release()
			if ctx.Err() != nil {
				return nil
			}
			l.log.Errorw("failed to LISTEN", "error", err)
			sleep(ctx, notifyBackoff)
			continue
		}

		l.log.Infow("listening for reload notifications")
		l.wait(ctx, conn.Conn())
		conn.Release()
	}
}

// wait blocks on notifications until ctx ends or the connection breaks.
func (l *Listener) wait(ctx context.Context, conn *pgx.Conn) {
	for {
		waitCtx, cancel := context.WithTimeout(ctx, notifyWait)
		n, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if waitCtx.Err() == context.DeadlineExceeded {
				continue
			}
			l.log.Warnw("notification wait failed, reconnecting", "error", err)
			return
		}
		l.handle(ctx, n)
	}
}

// handle dispatches one notification; a panicking callback is logged.
func (l *Listener) handle(ctx context.Context, n *pgconn.Notification) {
	if n == nil || n.Channel != l.channel {
		return
	}
	screen := strings.TrimSpace(n.Payload)
	l.log.Debugw("received notification", "screen", screen)

	defer func() {
		if r := recover(); r != nil {
			l.log.Errorw("reload panic recovered", "screen", screen, "panic", r)
		}
	}()
	l.reload(ctx, screen)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
