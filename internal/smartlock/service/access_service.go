package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartlock/gateway/internal/metrics"
	"github.com/smartlock/gateway/internal/notify"
	"github.com/smartlock/gateway/internal/smartlock/store"
	"github.com/smartlock/gateway/internal/smartlock/types"
)

var (
	ErrInvalidCardID = errors.New("card_id is required")
)

// Verdict reasons returned to the caller.  First applicable wins.
const (
	ReasonGranted         = "access granted"
	ReasonOutsideHours    = "outside working hours"
	ReasonHourlyExceeded  = "too many attempts in the last hour"
	ReasonDailyExceeded   = "too many attempts today"
)

// AccessPolicy holds the rule parameters for the decision engine.
// WorkdayStart/WorkdayEnd are seconds since midnight; both boundary
// instants are inside the allowed window.
type AccessPolicy struct {
	WorkdayStart      int
	WorkdayEnd        int
	MaxHourlyAttempts int
	MaxDailyAttempts  int
}

// DefaultPolicy mirrors the historical fixed thresholds: 09:00-18:00,
// 5 attempts per rolling hour, 20 per rolling day.
func DefaultPolicy() AccessPolicy {
	return AccessPolicy{
		WorkdayStart:      9 * 3600,
		WorkdayEnd:        18 * 3600,
		MaxHourlyAttempts: 5,
		MaxDailyAttempts:  20,
	}
}

// AccessServiceDeps wires the engine's collaborators.
type AccessServiceDeps struct {
	Directory *Directory
	Attempts  store.AttemptStore
	Notifier  notify.Notifier
	Policy    AccessPolicy
	Logger    zerolog.Logger

	// Now supplies the evaluation clock.  Defaults to time.Now; the
	// engine never reads system time anywhere else.
	Now func() time.Time

	// SerializePerUser holds a per-user lock across the count-read and
	// the audit append.  Off by default: two concurrent requests for the
	// same user can both observe the pre-increment count and both be
	// granted one past the limit.
	SerializePerUser bool
}

// AccessService is the access decision engine.  It is stateless per
// request and safe for concurrent use.
type AccessService struct {
	directory *Directory
	attempts  store.AttemptStore
	notifier  notify.Notifier
	policy    AccessPolicy
	logger    zerolog.Logger
	now       func() time.Time
	locks     *userLocks
}

func NewAccessService(d AccessServiceDeps) *AccessService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}

	s := &AccessService{
		directory: d.Directory,
		attempts:  d.Attempts,
		notifier:  d.Notifier,
		policy:    d.Policy,
		logger:    d.Logger,
		now:       d.Now,
	}
	if d.SerializePerUser {
		s.locks = newUserLocks()
	}
	return s
}

// Verify evaluates one access request: resolve the user, compute the
// overtime and rate-limit flags, append exactly one terminal audit
// record, alert the admin channel if anything is suspicious, and return
// the verdict.  An unknown card aborts before any side effect.
func (s *AccessService) Verify(ctx context.Context, req types.AccessRequest) (types.AccessResponse, error) {
	now := s.now()

	user, err := s.directory.ResolveByCard(ctx, req.CardID)
	if err != nil {
		return types.AccessResponse{}, err
	}

	if s.locks != nil {
		unlock := s.locks.lock(user.ID)
		defer unlock()
	}

	overtime := s.isOvertime(now)

	hourly, err := s.attempts.CountSince(ctx, user.ID, now.Add(-time.Hour))
	if err != nil {
		return types.AccessResponse{}, fmt.Errorf("hourly attempt count: %w", err)
	}
	daily, err := s.attempts.CountSince(ctx, user.ID, now.Add(-24*time.Hour))
	if err != nil {
		return types.AccessResponse{}, fmt.Errorf("daily attempt count: %w", err)
	}

	// Both flags use the counts observed before this attempt.
	excessiveHourly := hourly >= s.policy.MaxHourlyAttempts
	excessiveDaily := daily >= s.policy.MaxDailyAttempts
	granted := !overtime && !excessiveHourly && !excessiveDaily

	status := store.StatusDenied
	if granted {
		status = store.StatusGranted
	}

	rec := store.AttemptRecord{
		UserID:       user.ID,
		CardID:       user.CardID,
		OccurredAt:   now.UTC(),
		Location:     strings.TrimSpace(req.Location),
		Status:       status,
		AttemptCount: hourly + 1,
		Overtime:     overtime,
		Excessive:    excessiveHourly || excessiveDaily,
	}

	// No verdict without an audit trail: a failed append fails the request.
	if _, err := s.attempts.Append(ctx, rec); err != nil {
		return types.AccessResponse{}, fmt.Errorf("append audit record: %w", err)
	}

	if overtime || excessiveHourly || excessiveDaily {
		s.alert(ctx, user, overtime, excessiveHourly, hourly, excessiveDaily, daily)
	}

	reason := ReasonGranted
	switch {
	case overtime:
		reason = ReasonOutsideHours
	case excessiveHourly:
		reason = ReasonHourlyExceeded
	case excessiveDaily:
		reason = ReasonDailyExceeded
	}

	metrics.RecordDecision(granted)
	s.logger.Debug().
		Int64("user_id", user.ID).
		Bool("granted", granted).
		Str("reason", reason).
		Int("hourly_count", hourly).
		Int("daily_count", daily).
		Msg("access decision")

	return types.AccessResponse{
		Granted:    granted,
		Reason:     reason,
		ServerTime: now.UTC().Format(time.RFC3339Nano),
	}, nil
}

// isOvertime uses strict comparisons: 09:00:00 and 18:00:00 themselves
// are inside the allowed window.
func (s *AccessService) isOvertime(now time.Time) bool {
	tod := now.Hour()*3600 + now.Minute()*60 + now.Second()
	return tod < s.policy.WorkdayStart || tod > s.policy.WorkdayEnd
}

// alert sends the admin notification.  Best-effort: failures are logged
// and counted but never surfaced to the caller, since an alert should
// not block a physical access decision.
func (s *AccessService) alert(ctx context.Context, user store.User, overtime, excessiveHourly bool, hourly int, excessiveDaily bool, daily int) {
	text := fmt.Sprintf(
		"Security Alert: User %s attempted access with following issues:\n"+
			"- Overtime Access: %s\n"+
			"- Excessive Hourly Attempts: %s (%d attempts)\n"+
			"- Excessive Daily Attempts: %s (%d attempts)",
		user.Name,
		yesNo(overtime),
		yesNo(excessiveHourly), hourly,
		yesNo(excessiveDaily), daily,
	)

	if err := s.notifier.SendAdminAlert(ctx, text); err != nil {
		metrics.RecordAlert(false)
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("admin alert delivery failed")
		return
	}
	metrics.RecordAlert(true)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
