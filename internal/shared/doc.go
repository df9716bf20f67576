// Package shared holds code used across packages that belongs to no single
// layer. The testutil subpackage provides the panel fixture and a
// log-capturing slog handler for tests.
package shared
