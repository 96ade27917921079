// Package task runs units of work on a bounded pool of goroutines.
//
// Producers enqueue Tasks on a TaskQueue and close it; a WorkerPool drains
// the queue with a fixed number of workers until the queue is empty or the
// pool's context is cancelled. The extractor uses it to generate record
// summaries concurrently while every worker shares one generation engine.
package task
