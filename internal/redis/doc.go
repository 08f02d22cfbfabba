// Package redis provides the Redis-backed parts of the service.
//
// It houses two features: a read-through cache for the unread notification
// counter, in front of the Postgres notification store, and the pub/sub
// bridge that relays room publishes to other instances. Redis is optional:
// without it the cache degrades to direct store reads and fan-out stays
// in-process.
package redis
