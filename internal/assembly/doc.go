// Package assembly runs the layer-by-layer packet assembly session.
//
// The session is a loop over a menu:
//
//	Ether, Dot1Q, IP, TCP, UDP   configure that layer field by field
//	Raw                          pick a preset payload
//	Finish                       choose the total size and build
//	Cancel                       discard everything, no packet
//	Load Packet                  return a packet read from a capture file
//
// Configured layers are stacked in the order chosen. Finish pads the stack
// with null bytes up to the requested size, or truncates it with an advisory
// when the size is below the natural length.
package assembly
