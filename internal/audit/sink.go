// Package audit records who changed what. Recording is fire-and-forget: a
// failed write is logged and never surfaces to the request that caused it.
package audit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

// Writer persists audit entries.
type Writer interface {
	Insert(ctx context.Context, e *entity.Entry) error
}

// maxWrites caps concurrent audit inserts.
const maxWrites = 4

type Sink struct {
	w       Writer
	logger  *zap.SugaredLogger
	sem     chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewSink(w Writer, logger *zap.SugaredLogger) *Sink {
	return &Sink{w: w, logger: logger, sem: make(chan struct{}, maxWrites), timeout: 5 * time.Second}
}

// Record writes e in the background. At most maxWrites inserts run at once;
// the rest wait their turn. A write outlives request cancellation but is
// bounded by the sink timeout once it starts.
func (s *Sink) Record(ctx context.Context, e entity.Entry) {
	if e.ID == 0 {
		e.ID = utilities.NewSnowflakeID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sem <- struct{}{}
		defer func() { <-s.sem }()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		if err := s.w.Insert(wctx, &e); err != nil {
			s.logger.Errorw("failed to create audit log",
				"err", err,
				"action", e.Action,
				"entity_type", e.EntityType,
				"entity_id", e.EntityID,
			)
		}
	}()
}

// Close waits for pending writes or until ctx is done.
func (s *Sink) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestMeta extracts the client address and user agent for an entry.
func RequestMeta(r *http.Request) (ip *string, userAgent *string) {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		ip = &host
	} else if r.RemoteAddr != "" {
		addr := r.RemoteAddr
		ip = &addr
	}
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}
	return ip, userAgent
}
