// Package callback implements the one-shot completion handle that delivers a
// request's Result back to its transport, plus a few Responder helpers.
package callback
