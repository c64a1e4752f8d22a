// Package host provides the capabilities logic modules may import from the
// "env" namespace and the default contract they are verified against.
//
// Every capability is a void function taking f32 arguments:
//
//	draw_rectangle(x, y, w, h, r, g, b)
//	draw_circle(x, y, radius, r, g, b)
//	draw_circle_lines(x, y, radius, thickness, r, g, b)
//	draw_line(x1, y1, x2, y2, thickness, r, g, b)
//
// Calls are forwarded to a Canvas. Recorder is a Canvas that stores them.
package host
