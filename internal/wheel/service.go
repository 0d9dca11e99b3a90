package wheel

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/boutique-backend/internal/coupons"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/redis"
)

const spinLockScope = "wheel_spin"

// Ineligibility reasons reported in details.reason.
const (
	ReasonInactive       = "wheel_inactive"
	ReasonAuthRequired   = "auth_required"
	ReasonNoPlayer       = "player_required"
	ReasonLifetimeLimit  = "lifetime_limit_reached"
	ReasonDailyLimit     = "daily_limit_reached"
	ReasonSpinInProgress = "spin_in_progress"
)

// Player identifies who spins: a signed-in user, or an anonymous session.
type Player struct {
	UserID    *uuid.UUID
	SessionID string
}

func (p Player) anonymous() bool { return p.UserID == nil }

// Eligibility is the wheel state shown before a spin.
type Eligibility struct {
	Eligible     bool               `json:"eligible"`
	Reason       string             `json:"reason,omitempty"`
	PlaysToday   int64              `json:"plays_today"`
	PlaysTotal   int64              `json:"plays_total"`
	MaxPerDay    int                `json:"max_plays_per_day"`
	MaxPerUser   int                `json:"max_plays_per_user"`
	WinningZones []models.WheelZone `json:"winning_zones,omitempty"`
	LosingZones  []models.WheelZone `json:"losing_zones,omitempty"`
}

// SpinResult is the outcome of one spin.
type SpinResult struct {
	Zone   models.WheelZone `json:"zone"`
	Winner bool             `json:"winner"`
	Coupon *coupons.Coupon  `json:"coupon,omitempty"`
	PlayID uuid.UUID        `json:"play_id"`
}

type store interface {
	ActiveSettings(ctx context.Context) (*models.WheelGameSettings, error)
	CountPlays(ctx context.Context, userID *uuid.UUID, sessionID string, since *time.Time) (int64, error)
	LogPlay(ctx context.Context, play *models.WheelGamePlay) error
}

type minter interface {
	Mint(ctx context.Context, userID, couponTypeID uuid.UUID, source enums.CouponSource) (*models.UserCoupon, error)
}

type Service interface {
	Eligibility(ctx context.Context, player Player) (*Eligibility, error)
	Spin(ctx context.Context, player Player) (*SpinResult, error)
}

type service struct {
	repo   store
	minter minter
	logg   *logger.Logger
	now    func() time.Time
	draw   func() float64
	loc    *time.Location

	locks   redis.LockStore
	lockTTL time.Duration
}

type Option func(*service)

// WithDraw replaces the uniform [0, 1) source used to spin.
func WithDraw(draw func() float64) Option {
	return func(s *service) {
		if draw != nil {
			s.draw = draw
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone whose midnight resets the daily cap.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLocks serializes spins of the same player so the cap count and the play
// insert cannot interleave across requests or instances.
func WithLocks(locks redis.LockStore, ttl time.Duration) Option {
	return func(s *service) {
		if locks != nil && ttl > 0 {
			s.locks = locks
			s.lockTTL = ttl
		}
	}
}

func NewService(repo store, minter minter, logg *logger.Logger, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wheel repository required")
	}
	if minter == nil {
		return nil, fmt.Errorf("coupon minter required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &service{repo: repo, minter: minter, logg: logg, now: time.Now, draw: rand.Float64, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Eligibility(ctx context.Context, player Player) (*Eligibility, error) {
	settings, err := s.repo.ActiveSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wheel settings")
	}
	return s.evaluate(ctx, settings, player)
}

func (s *service) evaluate(ctx context.Context, settings *models.WheelGameSettings, player Player) (*Eligibility, error) {
	if settings == nil {
		return &Eligibility{Reason: ReasonInactive}, nil
	}
	out := &Eligibility{
		MaxPerDay:    settings.MaxPlaysPerDay,
		MaxPerUser:   settings.MaxPlaysPerUser,
		WinningZones: settings.WinningZones,
		LosingZones:  settings.LosingZones,
	}
	player.SessionID = strings.TrimSpace(player.SessionID)
	if player.anonymous() {
		if settings.RequireAuth {
			out.Reason = ReasonAuthRequired
			return out, nil
		}
		if player.SessionID == "" {
			out.Reason = ReasonNoPlayer
			return out, nil
		}
	}

	// The lifetime cap only applies to signed-in users.
	if !player.anonymous() {
		total, err := s.repo.CountPlays(ctx, player.UserID, "", nil)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count wheel plays")
		}
		out.PlaysTotal = total
		if settings.MaxPlaysPerUser > 0 && total >= int64(settings.MaxPlaysPerUser) {
			out.Reason = ReasonLifetimeLimit
			return out, nil
		}
	}

	since := startOfDay(s.now(), s.loc)
	today, err := s.repo.CountPlays(ctx, player.UserID, player.SessionID, &since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count wheel plays")
	}
	out.PlaysToday = today
	if settings.MaxPlaysPerDay > 0 && today >= int64(settings.MaxPlaysPerDay) {
		out.Reason = ReasonDailyLimit
		return out, nil
	}
	out.Eligible = true
	return out, nil
}

// Spin draws a zone, mints the prize coupon for signed-in winners and logs the
// play whatever the outcome of the mint.
func (s *service) Spin(ctx context.Context, player Player) (*SpinResult, error) {
	settings, err := s.repo.ActiveSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wheel settings")
	}

	release, err := s.lockPlayer(ctx, player)
	if err != nil {
		return nil, err
	}
	defer release()

	elig, err := s.evaluate(ctx, settings, player)
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		return nil, ineligible(elig.Reason)
	}

	total := TotalWeight(settings.WinningZones, settings.LosingZones)
	if total <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "wheel has no zones").WithDetail("reason", ReasonInactive)
	}
	zone, winner, ok := SelectZone(settings.WinningZones, settings.LosingZones, s.draw()*total)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "draw fell outside the wheel")
	}

	if player.UserID != nil {
		ctx = s.logg.WithUserID(ctx, player.UserID.String())
	}
	play := &models.WheelGamePlay{
		ID:           uuid.New(),
		UserID:       player.UserID,
		ZoneLabel:    zone.Label,
		IsWinner:     winner,
		CouponTypeID: zone.CouponTypeID,
		PlayedAt:     s.now().UTC(),
	}
	if sid := strings.TrimSpace(player.SessionID); sid != "" {
		play.SessionID = &sid
	}
	result := &SpinResult{Zone: zone, Winner: winner, PlayID: play.ID}

	var mintErr error
	if winner && zone.CouponTypeID != nil && player.UserID != nil {
		coupon, err := s.minter.Mint(ctx, *player.UserID, *zone.CouponTypeID, enums.CouponSourceWheel)
		if err != nil {
			mintErr = err
			s.logg.Error(ctx, "mint wheel coupon", err)
		} else {
			play.UserCouponID = &coupon.ID
			dto := coupons.ToDTO(*coupon)
			result.Coupon = &dto
		}
	}

	if err := s.repo.LogPlay(ctx, play); err != nil {
		s.logg.Error(ctx, "log wheel play", err)
		if mintErr == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "log wheel play")
		}
	}
	if mintErr != nil {
		return nil, mintErr
	}
	return result, nil
}

// lockPlayer holds the per-player spin lock until the returned func runs.
// Players without an identity are left to evaluate, which rejects them.
func (s *service) lockPlayer(ctx context.Context, player Player) (func(), error) {
	id := playerKey(player)
	if s.locks == nil || id == "" {
		return func() {}, nil
	}
	lock, err := redis.NewLock(s.locks, s.locks.LockKey(spinLockScope, id), s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build wheel spin lock")
	}
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire wheel spin lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a spin is already in progress").WithDetail("reason", ReasonSpinInProgress)
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "lockKey", lock.Key()), "release wheel spin lock", err)
		}
	}, nil
}

func playerKey(p Player) string {
	if p.UserID != nil {
		return "user:" + p.UserID.String()
	}
	if sid := strings.TrimSpace(p.SessionID); sid != "" {
		return "session:" + sid
	}
	return ""
}

func ineligible(reason string) error {
	var code pkgerrors.Code
	switch reason {
	case ReasonAuthRequired:
		code = pkgerrors.CodeUnauthorized
	case ReasonInactive:
		code = pkgerrors.CodeStateConflict
	case ReasonNoPlayer:
		code = pkgerrors.CodeValidation
	default:
		code = pkgerrors.CodeForbidden
	}
	return pkgerrors.New(code, "not eligible to spin").WithDetail("reason", reason)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).UTC()
}
