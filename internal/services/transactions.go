// internal/services/transactions.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hearthline/commerce-api/internal/repositories"
)

// storeTxs pairs one catalog transaction with one relational transaction.
// There is no two-phase commit: the catalog commits first, then the ledger.
type storeTxs struct {
	catalog repositories.CatalogTx
	ledger  repositories.LedgerTx
	log     *logrus.Entry

	catalogDone bool
	ledgerDone  bool
}

func beginStoreTxs(ctx context.Context, catalog repositories.Catalog, ledger repositories.Ledger, log *logrus.Entry) (*storeTxs, error) {
	catalogTx, err := catalog.Begin(ctx)
	if err != nil {
		return nil, err
	}

	ledgerTx, err := ledger.Begin(ctx)
	if err != nil {
		bg := context.WithoutCancel(ctx)
		if abortErr := catalogTx.Abort(bg); abortErr != nil {
			log.WithError(abortErr).Warn("Failed to abort catalog transaction")
		}
		catalogTx.End(bg)
		return nil, err
	}

	return &storeTxs{catalog: catalogTx, ledger: ledgerTx, log: log}, nil
}

func (t *storeTxs) commit(ctx context.Context) error {
	if err := t.catalog.Commit(ctx); err != nil {
		return err
	}
	t.catalogDone = true

	if err := t.ledger.Commit(); err != nil {
		t.log.WithError(err).Error("Relational commit failed after catalog commit, stores need manual reconciliation")
		return fmt.Errorf("failed to commit relational transaction: %w", err)
	}
	t.ledgerDone = true
	return nil
}

// finish rolls back whatever has not committed and always ends the catalog
// session. It must be deferred right after beginStoreTxs succeeds.
func (t *storeTxs) finish(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if !t.catalogDone {
		if err := t.catalog.Abort(ctx); err != nil {
			t.log.WithError(err).Debug("Catalog transaction abort returned an error")
		}
	}
	if !t.ledgerDone {
		if err := t.ledger.Rollback(); err != nil {
			t.log.WithError(err).Debug("Relational transaction rollback returned an error")
		}
	}
	t.catalog.End(ctx)
}

// withStores runs fn inside a paired transaction and commits only when fn
// succeeds.
func withStores(ctx context.Context, catalog repositories.Catalog, ledger repositories.Ledger, log *logrus.Entry, fn func(*storeTxs) error) error {
	txs, err := beginStoreTxs(ctx, catalog, ledger, log)
	if err != nil {
		return err
	}
	defer txs.finish(ctx)

	if err := fn(txs); err != nil {
		return err
	}
	return txs.commit(ctx)
}

func withLedger(ctx context.Context, ledger repositories.Ledger, log *logrus.Entry, fn func(repositories.LedgerTx) error) error {
	tx, err := ledger.Begin(ctx)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(); err != nil {
			log.WithError(err).Debug("Relational transaction rollback returned an error")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit relational transaction: %w", err)
	}
	committed = true
	return nil
}

func withCatalog(ctx context.Context, catalog repositories.Catalog, log *logrus.Entry, fn func(repositories.CatalogTx) error) error {
	tx, err := catalog.Begin(ctx)
	if err != nil {
		return err
	}
	bg := context.WithoutCancel(ctx)
	defer tx.End(bg)

	if err := fn(tx); err != nil {
		if abortErr := tx.Abort(bg); abortErr != nil {
			log.WithError(abortErr).Debug("Catalog transaction abort returned an error")
		}
		return err
	}
	return tx.Commit(ctx)
}
