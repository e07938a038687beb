// Package audit defines the security event model for the admin auth
// engine and the plumbing that delivers events to an operator-supplied
// sink without blocking authentication flows.
//
// # Components
//
//   - Event: one security-relevant occurrence (login attempt, token
//     rotation, 2FA state change) with the acting administrator and
//     client metadata attached.
//   - Sink: the delivery contract implemented by operators. The package
//     ships NoOpSink, ChannelSink, JSONWriterSink and ZerologSink.
//   - Dispatcher: a bounded asynchronous fan-in that decouples event
//     producers from sink latency.
//
// # Architecture boundaries
//
// This package is a leaf. It knows nothing about credentials, tokens or
// permissions; producers decide what an event means, this package only
// moves it. Sinks receive events on a single dispatcher goroutine, so a
// Sink implementation needs no internal locking unless it is shared
// with other writers.
//
// # What this package must NOT do
//
//   - Block an authentication flow on sink latency. Emit is
//     fire-and-forget; when the buffer is full the event is counted as
//     dropped, never queued unboundedly.
//   - Interpret or filter events. Severity and retention are sink
//     policy.
//   - Carry secrets. Producers must never place passwords, raw tokens
//     or TOTP secrets in an Event.
package audit
