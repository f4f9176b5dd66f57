// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in the store package.
//
// Each store accepts a store.DBTX, so the same implementation works against
// a *sql.DB connection pool or a *sql.Tx transaction. Services compose the
// stores inside store.RunInTransaction when a matching run's writes must be
// atomic.
package postgres
