// Package debounce decides whether an alert for an item may fire now.
//
// A Store keeps one "last alert sent at" instant per item key. Gate consults
// it and refreshes the instant whenever it grants an alert. Backends:
//   - "marker": one file per item, the file mtime is the instant (default)
//   - "sqlite": a single SQLite database file
//   - "redis":  one key per item on a Redis server
//   - "memory": process-local map, for tests and dry runs
package debounce
