// Package clock provides a virtual-time event scheduler.
// Time advances only when the host calls Tick with an elapsed delta;
// due events then fire deterministically in deadline order.
// A Clock and its events belong to one logical thread of control
// and must not be shared between goroutines.
package clock
