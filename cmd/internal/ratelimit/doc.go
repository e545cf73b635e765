// Package ratelimit implements shopgate's fixed-window request rate limiter.
//
// Every counter is keyed by (client id, category) so a client's login budget
// and upload budget never bleed into each other. Counter state lives behind
// the CounterStore interface: the in-memory store serves a single process,
// the Redis store serves multi-instance deployments.
//
// Admission is the sole gate: a rejection happens before any business logic
// runs and never mutates the counter. Exhaustion is a normal outcome carried
// as a Decision value, never an error.
package ratelimit
