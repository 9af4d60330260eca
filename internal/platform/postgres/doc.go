// Package postgres provides PostgreSQL implementations of the store
// interfaces. Stores accept either a database connection or a transaction
// through the store.DBTX abstraction so services can compose them inside a
// single transaction.
package postgres
