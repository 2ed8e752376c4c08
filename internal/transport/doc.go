// Package transport speaks the sender control protocol.
//
// The sender daemon keeps one packet and a delay and puts the packet on the
// wire, once or continuously. It is driven by small frames:
//
//	[0]     flag    PACKET, START, STOP, DELAY, ... RESPONSE
//	[1-2]   length  data length, little-endian uint16
//	[3+]    data
//
// DELAY carries seconds (u8) then microseconds (u32 LE). Requests
// (NUM_PACKETS, GET_PACKET, GET_BANDWIDTH, GET_PACKET_SIZE) are answered with
// a RESPONSE frame; counters are u64 LE.
//
// Frames travel over a Unix or TCP stream back to back, or over a WebSocket
// with one frame per binary message. Client dials either. Sender and Server
// implement the daemon in process, for tests and for the "sim" command.
package transport
