// Package realtime implements the WebSocket fan-out layer.
//
// A Session wraps one WebSocket connection with a dedicated writer goroutine.
// The Registry tracks which sessions joined which rooms, creating rooms lazily
// and discarding them when the last member leaves. The Hub ties both together
// and exposes Publish: best-effort, at-most-once delivery to every current
// room member, ordered per room. Slow clients are evicted rather than allowed
// to stall delivery.
package realtime
