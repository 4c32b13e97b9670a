// Package finasync holds the shared vocabulary of the finasync pipeline:
// findings and their categories, the outcome shape returned by every tool,
// the handoff record passed between pipeline stages, and money helpers.
//
// The pipeline reads one financial document at a time and runs three stages
// in a fixed order:
//   - Investment: reads brokerage PDFs, prices the holdings and stores an
//     "investments" finding.
//   - Expense: reads transaction spreadsheets or CSV exports and stores an
//     "expenses" finding.
//   - CFO: reads back every finding, computes expenses, savings and stock
//     value, renders a chart and writes the monthly report.
//
// Findings live in a store (see package store) whose lifetime, process-local
// file or conversation session, is a configuration choice.
package finasync
