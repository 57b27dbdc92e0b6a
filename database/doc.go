// Package database connects persistent signature stores.
//
// Signatures are valid for twenty minutes. A persistent store lets short
// lived processes, such as successive helix-cli invocations, share them
// instead of fetching a new one on every start.
//
// # Supported Backends
//
//   - memory: process-local map, the default
//   - sqlite: a file (or ":memory:") using modernc.org/sqlite
//   - postgres: a shared table using the pgx connection pool
//   - redis: TTL'd keys using go-redis
//
// # Usage
//
//	store, cleanup, err := database.Connect(ctx, database.Config{
//	    Type:  "sqlite",
//	    DSN:   "helix-signatures.db",
//	    Table: "helix_signatures",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
//	cfg, err := helix.New(creds, helix.WithSignatureStore(store))
//
// SQL backends create their table on first use and validate its schema.
package database
