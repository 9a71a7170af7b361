// Package notifier delivers availability alerts to the operator's phone.
//
// A Dispatcher composes a Push (message, fixed title, fixed priority) and
// hands it to a Transport. Transports:
//   - "pushover": Pushover messages API (default)
//   - "telegram": a Telegram bot message to one chat/topic
//   - "log":      writes the push to the log only (dry run)
//
// # Failure policy
//
// The dispatcher never retries. A transport error is returned to the caller
// wrapped with ErrNotify; a refreshed debounce marker is not rolled back.
//
// # Rate limiting
//
// Sends pass through a token bucket so a pass that finds many available
// items cannot burst past the push provider's limits.
package notifier
