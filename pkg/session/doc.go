// Package session provides concurrency-safe access to conversation
// sessions. The Manager guarantees that only one goroutine operates on a
// given session at a time, and can additionally coordinate across
// processes through a distributed locker.
package session
