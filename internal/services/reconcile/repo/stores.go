package repo

import (
	"context"

	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
	"qsmerge/internal/modkit/repokit"
	"qsmerge/internal/services/reconcile/domain"
)

// Tables exposes period_tables as a domain.TableStore
type Tables struct {
	db     repokit.TxRunner
	binder repokit.Binder[domain.StorageRepo]
}

// NewTables binds the table store to db
func NewTables(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo]) *Tables {
	return &Tables{db: db, binder: binder}
}

// Exists implements domain.TableStore
func (t *Tables) Exists(ctx context.Context, name string) (bool, error) {
	return t.binder.Bind(t.db).TableExists(ctx, name)
}

// Load implements domain.TableStore
func (t *Tables) Load(ctx context.Context, name string) (*table.Table, error) {
	return t.binder.Bind(t.db).LoadTable(ctx, name)
}

// LoadMany reads all names in one transaction so they see the same snapshot
func (t *Tables) LoadMany(ctx context.Context, names []string) ([]*table.Table, error) {
	out := make([]*table.Table, 0, len(names))
	err := repokit.InTx(ctx, t.db, t.binder, func(r domain.StorageRepo) error {
		for _, n := range names {
			tb, err := r.LoadTable(ctx, n)
			if err != nil {
				return err
			}
			out = append(out, tb)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save implements domain.TableStore; the location is pg://period_tables/<name>
func (t *Tables) Save(ctx context.Context, name string, tb *table.Table) (string, error) {
	err := repokit.InTx(ctx, t.db, t.binder, func(r domain.StorageRepo) error {
		return r.SaveTable(ctx, name, tb)
	})
	if err != nil {
		return "", err
	}
	return "pg://period_tables/" + name, nil
}

// Stats exposes summary_stats as a domain.StatsStore
type Stats struct {
	db     repokit.TxRunner
	binder repokit.Binder[domain.StorageRepo]
}

// NewStats binds the stats store to db
func NewStats(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo]) *Stats {
	return &Stats{db: db, binder: binder}
}

// LoadStats implements domain.StatsStore
func (s *Stats) LoadStats(ctx context.Context) (reconcile.Stats, error) {
	return s.binder.Bind(s.db).LoadStats(ctx)
}

// SaveStats upserts the named rows in one transaction
func (s *Stats) SaveStats(ctx context.Context, st reconcile.Stats, keys []reconcile.StatKey) error {
	return repokit.InTx(ctx, s.db, s.binder, func(r domain.StorageRepo) error {
		return r.UpsertStats(ctx, st, keys)
	})
}
