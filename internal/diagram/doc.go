// Package diagram renders plane views outside the live WebSocket UI:
// PNG exports of the bending-vector view (image.go) and terminal output for
// replay sessions (ascii.go).
package diagram
