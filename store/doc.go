// Package store persists the inventory forest in SQLite.
//
// # Overview
//
// Every Entry is one row of the files table; parent_id links rows into a
// forest whose roots carry parent_id 0. Rows are append-only: a re-scan adds
// a fresh tree instead of updating the old one. The scans table records one
// row per committed top-level target.
//
// # Transactions
//
// A top-level scan target is written inside WithTx, so readers see either
// all of its entries or none. The Repository passed to the callback is bound
// to the transaction; Store.Repository returns one bound to the database for
// read-side consumers such as the duplicate grouper.
//
// The store holds a single connection. The scanner is single-threaded and
// nested reads inside a transaction must see its uncommitted rows.
//
// Typical Usage
//
//	st, _ := store.Open(ctx, "dedup.sqlite3")
//	defer st.Close()
//	_ = st.WithTx(ctx, func(ctx context.Context, repo *store.Repository) error {
//	    id, err := repo.Insert(ctx, e)
//	    ...
//	})
//	all, _ := st.Repository().All(ctx)
package store
