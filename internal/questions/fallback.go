package questions

import (
	"context"
	"errors"

	"flashquiz/internal/logger"
)

// FallbackSource serves the bundled set when the wrapped source fails with
// ErrNetwork. Only the first feed page has a bundled copy; later pages and
// achievements surface the error so callers can retry.
type FallbackSource struct {
	source Source
	log    *logger.Logger
}

func NewFallbackSource(source Source, log *logger.Logger) *FallbackSource {
	return &FallbackSource{source: source, log: logger.OrNop(log)}
}

func (f *FallbackSource) FetchPage(ctx context.Context, page int) ([]Question, error) {
	questions, err := f.source.FetchPage(ctx, page)
	if err == nil {
		return questions, nil
	}
	if !errors.Is(err, ErrNetwork) {
		return nil, err
	}
	if page > 1 {
		return nil, err
	}
	f.log.Warn("question feed unreachable, using bundled questions", "page", page, "error", err)
	return Builtin(), nil
}

func (f *FallbackSource) FetchRevision(ctx context.Context, query RevisionQuery) ([]Question, error) {
	questions, err := f.source.FetchRevision(ctx, query)
	if err == nil {
		return questions, nil
	}
	if !errors.Is(err, ErrNetwork) {
		return nil, err
	}
	f.log.Warn("revision questions unreachable, using bundled questions", "themes", query.ThemeIDs, "error", err)
	return Builtin(), nil
}

func (f *FallbackSource) FetchThemes(ctx context.Context) ([]Theme, error) {
	themes, err := f.source.FetchThemes(ctx)
	if err == nil {
		return themes, nil
	}
	if !errors.Is(err, ErrNetwork) {
		return nil, err
	}
	f.log.Warn("themes unreachable, using bundled themes", "error", err)
	return BuiltinThemes(), nil
}

func (f *FallbackSource) FetchAchievements(ctx context.Context) ([]Achievement, error) {
	return f.source.FetchAchievements(ctx)
}
