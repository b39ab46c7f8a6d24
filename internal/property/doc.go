// Package property provides synchronous observable values.
//
// The package defines the primitives the simulation model is built from:
//
//   - [Property]: a mutable value that notifies observers on change
//   - [Derived]: a read-only value recomputed from other properties
//   - [Emitter]: a fan-out of discrete events (particle added/removed)
//
// # Notification
//
// Notification is depth-first and fully synchronous: Set does not return
// until every observer, and every observer of an observer, has run. The
// observer list is copied before each notification so observers may link
// or unlink from inside a callback. Observers must not block.
//
// # Thread Safety
//
// Properties are NOT thread-safe. A model and all of its properties belong
// to one goroutine; other goroutines talk to it by message passing.
package property
