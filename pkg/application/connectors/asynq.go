package connectors

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

type Asynq struct {
	value          *asynq.Client
	Username       string
	Password       string
	Address        string
	DatabaseNumber int
	init           sync.Once
}

func (a *Asynq) Client(ctx context.Context) *asynq.Client {
	a.init.Do(func() {
		a.value = asynq.NewClient(asynq.RedisClientOpt{
			//nolint:exhaustruct
			Addr:     a.Address,
			Username: a.Username,
			Password: a.Password,
			DB:       a.DatabaseNumber,
		})

		logger(ctx).Info(
			"asynq client ready",
			slog.String("address", a.Address),
			slog.Int("database", a.DatabaseNumber),
		)
	})

	return a.value
}

func (a *Asynq) Close(ctx context.Context) {
	if err := a.value.Close(); err != nil {
		logger(ctx).Error("asynqClient.Close", logx.Error(err))
	}
}
