// Package console is the idle loop of the handheld packet generator.
//
// While idle the display shows the status lines and the buttons drive the
// sender: Select assembles and uploads a packet, Up and Down start and stop
// continuous sending, Right changes the delay and Left sends one packet.
// The backlight is green while sending and flashes to acknowledge commands.
package console
