// Package migrations registers the schema of the users, orders and
// failed_jobs tables. Import it for its side effects before running
// migration.Runner.
package migrations
