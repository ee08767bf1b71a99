package service

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"faucetgate/internal/disbursement/models"
	"faucetgate/internal/disbursement/reporting"
	dErrors "faucetgate/pkg/domain-errors"
)

// MaxRecentLimit caps RecentHistory page size.
const MaxRecentLimit = 200

// Stats returns aggregates over the whole log.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := s.store.AggregateStats(ctx)
	if err != nil {
		s.metrics.IncrementStoreFailures()
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeStorage, "disbursement log unavailable")
	}
	return stats, nil
}

// RecentHistory returns up to limit succeeded records, newest first.
// limit <= 0 yields an empty list; larger values are capped.
func (s *Service) RecentHistory(ctx context.Context, limit int) ([]models.Record, error) {
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	recs, err := s.store.Recent(ctx, limit)
	if err != nil {
		s.metrics.IncrementStoreFailures()
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "disbursement log unavailable")
	}
	return recs, nil
}

// DetailedStats bundles aggregates with the use-case breakdown.
type DetailedStats struct {
	models.Stats
	UseCases []reporting.UseCase
}

// DetailedStats runs both log scans concurrently.
func (s *Service) DetailedStats(ctx context.Context) (DetailedStats, error) {
	var (
		out            DetailedStats
		justifications []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.store.AggregateStats(gctx)
		out.Stats = stats
		return err
	})
	g.Go(func() error {
		js, err := s.store.SucceededJustifications(gctx)
		justifications = js
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.IncrementStoreFailures()
		return DetailedStats{}, dErrors.Wrap(err, dErrors.CodeStorage, "disbursement log unavailable")
	}
	out.UseCases = reporting.UseCases(justifications)
	return out, nil
}

// Health reports collaborator reachability and the ledger's spendable balance.
type Health struct {
	StoreOK  bool
	LedgerOK bool
	Balance  decimal.Decimal
}

func (h Health) OK() bool { return h.StoreOK && h.LedgerOK }

func (s *Service) Health(ctx context.Context) Health {
	h := Health{StoreOK: true, LedgerOK: true}
	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "health: store unreachable", "error", err)
		h.StoreOK = false
	}
	balance, err := s.ledger.Balance(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "health: ledger balance unavailable", "error", err)
		h.LedgerOK = false
	} else {
		h.Balance = balance
	}
	return h
}
