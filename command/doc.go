// Package command exposes the outbound actions as typed go-command messages
// so host applications can drive replies, reactions, shares, and raw talk
// writes through their existing command bus instead of holding an event's
// action surface.
package command
