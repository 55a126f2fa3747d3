// Package sqlite provides a durable SQLite-backed session store.
//
// The core contract only requires process-lifetime sessions; this adapter
// lets conversations survive restarts without changing that contract.
// Migrations are embedded and applied on open.
package sqlite
