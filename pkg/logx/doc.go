// Package logx configures kswatch's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Console and file levels independent (info on the terminal, debug on disk)
package logx
