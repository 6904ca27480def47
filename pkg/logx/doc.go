// Package logx configures crondesc's structured logging.
//
// Logger is a small value type on top of zerolog:
//   - Console output is human readable (short timestamp + short caller) and
//     goes to stderr so stdout stays reserved for translated sentences.
//   - File output is JSON structured.
//   - Service.Apply swaps sinks and level at runtime (config hot reload).
package logx
