package httpapi

import (
	"context"

	"flashquiz/internal/logger"
	"flashquiz/internal/questionbank"
	"flashquiz/internal/questions"
)

// Bank is the catalogue the handlers read from.
type Bank interface {
	Page(ctx context.Context, page, pageSize int) ([]questions.Question, error)
	ByThemes(ctx context.Context, themeIDs []int) ([]questions.Question, error)
	Themes(ctx context.Context) ([]questions.Theme, error)
	Achievements(ctx context.Context) ([]questions.Achievement, error)
	Count(ctx context.Context) (int, error)
}

type API struct {
	bank     Bank
	pageSize int
	log      *logger.Logger
}

func NewAPI(bank Bank, pageSize int, log *logger.Logger) *API {
	if pageSize <= 0 {
		pageSize = questionbank.DefaultPageSize
	}
	return &API{
		bank:     bank,
		pageSize: pageSize,
		log:      logger.OrNop(log),
	}
}
