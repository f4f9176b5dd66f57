// Package task provides the background task infrastructure used to run
// matching runs asynchronously.
//
// Tasks are persisted before execution so a crashed process can recover and
// requeue unfinished work on restart. The TaskRunner owns a worker pool
// consuming from a bounded in-memory queue; task status transitions
// (pending, processing, completed, failed) are written through the TaskStore.
package task
