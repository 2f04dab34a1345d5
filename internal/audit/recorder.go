// Package audit records one entry per successful login, attributed to the
// admin or public surface by the request path.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/datatypes"

	"github.com/angelmondragon/lostfound-backend/pkg/config"
	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	"github.com/angelmondragon/lostfound-backend/pkg/enums"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
	"github.com/angelmondragon/lostfound-backend/pkg/metrics"
)

// ErrAuditWrite marks an entry that could not be persisted within the retry budget.
var ErrAuditWrite = errors.New("login audit write failed")

// LoginEvent describes a successful authentication.
type LoginEvent struct {
	UserID     uuid.UUID
	RemoteAddr string
	Path       string
	UserAgent  string
	RequestID  string
}

type entryWriter interface {
	Insert(ctx context.Context, entry *models.LoginAuditEntry) error
}

// Recorder persists login events. It never fails the login it observes.
type Recorder struct {
	repo        entryWriter
	adminPrefix string
	cfg         config.AuditConfig
	logg        *logger.Logger
	metrics     *metrics.AuditMetrics
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// RecorderParams bundles the recorder dependencies.
type RecorderParams struct {
	Repo        entryWriter
	AdminPrefix string
	Config      config.AuditConfig
	Logger      *logger.Logger
	Metrics     *metrics.AuditMetrics
	Now         func() time.Time
}

func NewRecorder(params RecorderParams) (*Recorder, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	prefix := params.AdminPrefix
	if prefix == "" {
		prefix = "/admin/"
	}
	cfg := params.Config
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		repo:        params.Repo,
		adminPrefix: prefix,
		cfg:         cfg,
		logg:        params.Logger,
		metrics:     params.Metrics,
		now:         now,
		sleep:       sleepCtx,
	}, nil
}

// SourceFor attributes a login path to the admin or public surface.
func (r *Recorder) SourceFor(path string) enums.LoginSource {
	if strings.HasPrefix(path, r.adminPrefix) {
		return enums.LoginSourceAdmin
	}
	return enums.LoginSourceWebPortal
}

// Record writes exactly one entry for ev and reports whether it was stored.
// Failures are retried within the configured budget, then logged and counted.
func (r *Recorder) Record(ctx context.Context, ev LoginEvent) bool {
	source := r.SourceFor(ev.Path).String()
	entry := &models.LoginAuditEntry{
		UserID:      ev.UserID,
		IPAddress:   ParseIP(ev.RemoteAddr),
		LoginSource: source,
		Metadata:    metadataFor(ev),
		CreatedAt:   r.now().UTC().Truncate(time.Microsecond),
	}

	// the login response must not wait on, or be cancelled with, the client
	base := context.WithoutCancel(ctx)
	if r.cfg.Budget > 0 {
		var cancel context.CancelFunc
		base, cancel = context.WithTimeout(base, r.cfg.Budget)
		defer cancel()
	}

	var errs error
	attempts := 0
	for attempts < r.cfg.MaxAttempts {
		attempts++
		err := r.insertOnce(base, entry)
		if err == nil {
			r.metrics.IncRecorded(source, attempts)
			if r.logg != nil {
				r.logg.Info(r.fields(ctx, ev, source, attempts), "audit.login.recorded")
			}
			return true
		}
		errs = multierr.Append(errs, fmt.Errorf("attempt %d: %w", attempts, err))
		if attempts == r.cfg.MaxAttempts || base.Err() != nil {
			break
		}
		if err := r.sleep(base, r.backoff(attempts)); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
	}

	r.metrics.IncDropped(source, attempts)
	if r.logg != nil {
		r.logg.Error(r.fields(ctx, ev, source, attempts), "audit.login.dropped", fmt.Errorf("%w: %w", ErrAuditWrite, errs))
	}
	return false
}

func (r *Recorder) insertOnce(ctx context.Context, entry *models.LoginAuditEntry) error {
	attemptCtx := ctx
	if r.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.cfg.AttemptTimeout)
		defer cancel()
	}
	// a failed insert may have assigned an id; let the next attempt assign a fresh one
	entry.ID = uuid.Nil
	return r.repo.Insert(attemptCtx, entry)
}

func (r *Recorder) backoff(attempt int) time.Duration {
	return r.cfg.Backoff * time.Duration(1<<(attempt-1))
}

func (r *Recorder) fields(ctx context.Context, ev LoginEvent, source string, attempts int) context.Context {
	ctx = r.logg.WithUserID(ctx, ev.UserID.String())
	ctx = r.logg.WithLoginSource(ctx, source)
	return r.logg.WithField(ctx, "attempts", attempts)
}

// ParseIP returns the canonical host part of addr when it is a valid IP.
func ParseIP(addr string) *string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	ip, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return nil
	}
	s := ip.Unmap().WithZone("").String()
	return &s
}

func metadataFor(ev LoginEvent) datatypes.JSON {
	meta := map[string]string{}
	if ev.UserAgent != "" {
		meta["user_agent"] = ev.UserAgent
	}
	if ev.RequestID != "" {
		meta["request_id"] = ev.RequestID
	}
	if ev.Path != "" {
		meta["path"] = ev.Path
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
