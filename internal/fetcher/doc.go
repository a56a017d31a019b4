// Package fetcher retrieves raw tables from external sources.
//
// Every fetcher returns a domain.RawTable of untouched string cells; column
// selection and type coercion belong to dataprocessing. Sources:
//
//   - HTTPTableFetcher: an HTML page fetched over HTTP, first table or the
//     table with a given id
//   - BrowserTableFetcher: the same page rendered in headless Chrome, for
//     sites that build the table with JavaScript
//   - SpreadsheetReader: a sheet of an .xlsx workbook, header at a fixed row
//   - FREDClient: one series of observations from the FRED API
//
// Network failures and non-2xx responses are FETCH errors. Nothing is
// retried: a failed fetch fails the run.
package fetcher
