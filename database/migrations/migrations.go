// Package migrations holds the SQL product store's schema migrations. Each
// file registers itself from init(); cmd/catalog imports the package for the
// side effect.
package migrations
