// Package shared holds helpers used across packages that belong to no single
// layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and small series builders for table-driven tests:
//
//	logger, handler := testutil.NewTestLogger(t)
//	s := testutil.MonthlySeries("shiller_pe", testutil.Month(2020, time.January), 20, 21, 22)
//
// Nothing here may import a production package other than pkg/contracts.
package shared
