package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flashquiz/internal/blobstore"
	"flashquiz/internal/ledger"
	"flashquiz/internal/logger"
	"flashquiz/internal/metrics"
)

const (
	AvatarKey     = "user_avatar.jpg"
	MaxAvatarSize = 5 << 20
)

var (
	ErrNotImage       = errors.New("avatar is not an image")
	ErrAvatarTooLarge = errors.New("avatar is too large")
)

type Snapshotter interface {
	Load(ctx context.Context) []ledger.AnswerEvent
}

type Stats struct {
	metrics.Summary
	DayStreak      int
	WeeklyProgress int
	WeeklyTarget   int
}

// Profile computes stats on demand; nothing is cached between refreshes.
type Profile struct {
	events       Snapshotter
	store        blobstore.Store
	weeklyTarget int
	now          func() time.Time
	log          *logger.Logger
}

func New(events Snapshotter, store blobstore.Store, weeklyTarget int, log *logger.Logger) *Profile {
	return &Profile{
		events:       events,
		store:        store,
		weeklyTarget: weeklyTarget,
		now:          time.Now,
		log:          logger.OrNop(log),
	}
}

func (p *Profile) Refresh(ctx context.Context) Stats {
	events := p.events.Load(ctx)
	today := p.now()
	return Stats{
		Summary:        metrics.Summarize(events),
		DayStreak:      metrics.ConsecutiveDayStreak(events, today),
		WeeklyProgress: metrics.WeeklyProgress(events, today, p.weeklyTarget),
		WeeklyTarget:   p.weeklyTarget,
	}
}

// SetAvatar replaces the stored avatar with an image read from r.
func (p *Profile) SetAvatar(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarSize+1))
	if err != nil {
		return fmt.Errorf("read avatar: %w", err)
	}
	if len(data) > MaxAvatarSize {
		return ErrAvatarTooLarge
	}
	if contentType := http.DetectContentType(data); !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: detected %s", ErrNotImage, contentType)
	}

	if err := p.store.Put(ctx, AvatarKey, data); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}
	p.log.Info("avatar updated", "bytes", len(data))
	return nil
}

// Avatar returns the stored image, or found=false when none was set.
func (p *Profile) Avatar(ctx context.Context) ([]byte, bool, error) {
	data, err := p.store.Get(ctx, AvatarKey)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load avatar: %w", err)
	}
	return bytes.Clone(data), true, nil
}
