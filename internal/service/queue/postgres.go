package queue

import (
	"context"

	"github.com/jackc/pgx/v5"

	postgresrepo "github.com/kirinyoku/antrian-go/internal/repository/postgres"
	"github.com/kirinyoku/antrian-go/internal/uow"
)

type pgTransactor struct {
	uow *uow.UoW
}

// NewTransactor runs queue transactions through u at READ COMMITTED; the
// per-day advisory lock serializes writers instead of the isolation level.
func NewTransactor(u *uow.UoW) Transactor {
	return pgTransactor{uow: u}
}

func (t pgTransactor) InTx(
	ctx context.Context,
	fn func(ctx context.Context, tickets Tickets, after func(uow.AfterCommit)) error,
) error {
	return t.uow.DoWithOpts(
		ctx,
		&pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
		func(ctx context.Context, repo *postgresrepo.TicketRepo, after func(uow.AfterCommit)) error {
			return fn(ctx, repo, after)
		},
	)
}
