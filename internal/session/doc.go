// Package session owns the single active radio test.
//
// A Controller is not safe for concurrent use. It is driven from one worker
// goroutine; engine completions reach it only as Complete calls made by that
// same worker.
package session
