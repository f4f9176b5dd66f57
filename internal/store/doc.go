// Package store defines the persistence interfaces the matching service
// depends on, together with shared sentinel errors and the transaction
// helper used to make a whole matching run's writes atomic.
//
// Implementations live in internal/platform/postgres. Every store exposes a
// WithTx method returning a store bound to an open transaction, so services
// can compose multiple stores inside one RunInTransaction call.
package store
