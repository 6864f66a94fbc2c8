/*
Package pool provides the bounded worker pool that services inbound requests.

A fixed set of long-lived workers drains a bounded queue. Submission never
blocks: a full queue is reported as ErrSaturated and the caller decides what to
do with the work. Each Unit runs on exactly one worker, start to finish.

# Lifecycle

	Uninitialized -> Active -> ShuttingDown -> Terminated

New returns an Active pool. Lazy wraps construction in a process-scoped handle
that builds the pool on first use. Shutdown stops accepting work, drains what is
already queued and waits for the workers; if its context expires first the
context handed to running units is cancelled.
*/
package pool
