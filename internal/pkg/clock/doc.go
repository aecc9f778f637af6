// Package clock provides a tiny time abstraction.
//
// Code that stamps records or events depends on Clocker instead of calling
// time.Now directly, so tests can pin time with Fixed.
package clock
