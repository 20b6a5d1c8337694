package service

import (
	"log/slog"

	postgres "github.com/kirinyoku/antrian-go/internal/repository/postgres"
	redis "github.com/kirinyoku/antrian-go/internal/repository/redis"
	"github.com/kirinyoku/antrian-go/internal/service/query"
	"github.com/kirinyoku/antrian-go/internal/service/queue"
	"github.com/kirinyoku/antrian-go/internal/uow"
)

type Services struct {
	Queue *queue.Service
	Query *query.Service
}

type Config struct {
	Queue queue.Config
	Query query.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.QueuePubSub,
	limiter *redis.SlidingWindowLimiter,
	log *slog.Logger,
	cfg Config,
) *Services {
	tickets := store.Tickets()

	// typed nils must not reach the optional interfaces
	var (
		inv queue.Invalidator
		ntf queue.Notifier
		lim queue.Limiter
	)
	if cache != nil {
		inv = cache
	}
	if pubsub != nil {
		ntf = pubsub
	}
	if limiter != nil {
		lim = limiter
	}

	return &Services{
		Queue: queue.New(tickets, queue.NewTransactor(uow.NewUoW(store)), inv, ntf, lim, log, cfg.Queue),
		Query: query.New(tickets, cache, cfg.Query),
	}
}
