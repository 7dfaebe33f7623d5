// Package exporter renders aggregation output into report artifacts: an
// xlsx workbook, PNG chart images and a PDF document. Exporters only
// consume a read-only Statistics value; they never feed back into the
// pipeline.
package exporter
