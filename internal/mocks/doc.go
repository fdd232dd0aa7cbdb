// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these
// standardized implementations are shared across test packages. Every
// mock follows the same pattern: per-method function fields override
// the behavior when set, otherwise a simple map-backed default applies.
package mocks
