package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"faucetgate/internal/disbursement/ports"
	"faucetgate/internal/disbursement/store"
	"faucetgate/internal/identity/oracle"
	"faucetgate/internal/identity/proof"
	"faucetgate/internal/identity/verifier"
	"faucetgate/internal/ledger"
	"faucetgate/internal/platform/config"
	"faucetgate/pkg/platform/audit"
	auditmemory "faucetgate/pkg/platform/audit/store/memory"
	auditpg "faucetgate/pkg/platform/audit/store/postgres"
	"faucetgate/pkg/platform/circuit"
)

// storage bundles the request ledger with the audit store that shares its backend.
type storage struct {
	requests ports.Store
	audit    audit.Store
}

func buildStorage(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (*storage, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		log.Warn("using in-memory request ledger; history is lost on restart")
		return &storage{requests: store.NewInMemory(), audit: auditmemory.NewInMemoryStore()}, nil
	case config.StoreSQLite:
		s, err := store.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Info("request ledger opened", "driver", cfg.Driver, "path", cfg.Path)
		return &storage{requests: s, audit: auditmemory.NewInMemoryStore()}, nil
	case config.StorePostgres:
		s, err := store.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		auditStore, err := openPostgresAudit(ctx, s.DB())
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		log.Info("request ledger opened", "driver", cfg.Driver)
		return &storage{requests: s, audit: auditStore}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openPostgresAudit(ctx context.Context, db *sql.DB) (*auditpg.Store, error) {
	s := auditpg.New(db)
	if err := s.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate audit store: %w", err)
	}
	return s, nil
}

func buildLedger(cfg config.LedgerConfig, log *slog.Logger) (ports.Ledger, error) {
	switch cfg.Mode {
	case config.ModeMock:
		log.Warn("ledger running in mock mode; no funds move")
		return ledger.NewMock(log), nil
	case config.ModeRemote:
		remote, err := ledger.NewRemote(cfg.URL, ledger.WithRemoteAPIKey(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("ledger relayer: %w", err)
		}
		return remote, nil
	default:
		return nil, fmt.Errorf("unknown ledger mode %q", cfg.Mode)
	}
}

func buildVerifier(cfg config.IdentityConfig, publisher ports.AuditPublisher, log *slog.Logger) (ports.Verifier, error) {
	switch cfg.Mode {
	case config.ModeMock:
		log.Warn("identity verification running in mock mode; every identity is accepted")
		return verifier.Mock{}, nil
	case config.ModeRemote:
		client, err := oracle.New(cfg.OracleURL, cfg.Timeout, oracle.WithAPIKey(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("identity oracle: %w", err)
		}
		return verifier.New(client,
			verifier.WithLogger(log),
			verifier.WithProofChecker(proof.New(cfg.TrustedDomain, cfg.Timeout)),
			verifier.WithBreaker(circuit.New("identity-oracle")),
			verifier.WithAuditPublisher(publisher),
		), nil
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
}
