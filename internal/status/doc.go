// Package status writes the idle screen: transmit bandwidth and CPU use.
//
// Bandwidth comes from the sender (GET_BANDWIDTH) or, when no sender
// reports it, from the interface's tx_bytes counter in sysfs. CPU use comes
// from /proc/stat.
package status
