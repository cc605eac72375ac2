package modkit

import (
	"qsmerge/internal/modkit/repokit"
	"qsmerge/internal/platform/config"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/logger"
	"qsmerge/internal/platform/store"
)

// Deps is what main hands every module. PG and CH are nil when their backend is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// RequirePG returns the ledger database or an Unavailable error naming the module that needed it
func (d Deps) RequirePG(module string) (repokit.TxRunner, error) {
	if d.PG == nil {
		return nil, perr.Unavailablef("%s: postgres is required", module)
	}
	return d.PG, nil
}
