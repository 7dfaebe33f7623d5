// Package dataprocessing implements the vacancy statistics pipeline: CSV
// ingestion with row shape filtering, record normalization into the
// reference currency, and the year/area aggregation that feeds the report
// sinks.
//
// The pipeline is a synchronous, single-pass batch job. A run either
// completes with a read-only Statistics value plus drop/skip reports, or
// fails with a typed error from vacstat/internal/errors.
package dataprocessing
