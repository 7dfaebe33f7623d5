// Package shared holds cross-cutting helpers that belong to no single
// pipeline stage. Currently it only carries testutil, the log-capture
// helpers used by package tests.
package shared
