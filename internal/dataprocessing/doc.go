// Package dataprocessing turns raw source tables into canonical monthly
// series.
//
// Every source (spreadsheet, scraped HTML table, FRED observations) is first
// read into a domain.RawTable of string cells. The Normalizer then:
//
//  1. finds the date column by exact label and the value column by label prefix
//  2. parses each date token to the first day of its month (UTC)
//  3. parses each value cell to a finite float
//  4. drops rows where either parse failed
//  5. sorts ascending by date and keeps the first row for each date
//
// Column lookup failures are configuration errors and abort the run. Row
// level failures are counted in NormalizeResult and logged at debug level.
//
// # Date tokens
//
// Spreadsheet dates arrive as "YYYY.F" where the month was written as a
// decimal fraction. The fraction "1" is October (1871.10 stored as 1871.1);
// any other single digit is a month with its leading zero dropped:
//
//	ParseFractionalMonth("2020.1")  // 2020-10-01
//	ParseFractionalMonth("2020.4")  // 2020-04-01
//	ParseFractionalMonth("2020.12") // 2020-12-01
//
// Other sources use conventional layouts through ParseMonthDate.
package dataprocessing
