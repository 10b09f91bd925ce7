package storage

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Transaction runs fn in a single database transaction. Repositories that
// reach the database through Conn with the ctx passed to fn join it, so
// writes of several modules commit or roll back together. A ctx already
// carrying a transaction is reused.
//
// The pool holds one connection: inside fn, every query must go through
// Conn, and no request-reply call may wait on another module's query.
func Transaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction carried by ctx, or db when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
