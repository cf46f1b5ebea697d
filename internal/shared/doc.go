// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on log records
//   - the raw sample dataset and its CSV rendering
//   - helpers writing the sample tables into a temporary input directory
//
// Production code must not import testutil.
package shared
