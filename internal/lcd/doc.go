// Package lcd is the display and button collaborator of the packet builder.
//
// A Display is a two-line character plate with five buttons (up, down, left,
// right, select). The package does not know what is being edited; it offers
// exclusive sessions, line writes and debounced button presses.
//
// # Locking
//
// Two activities share the plate: the foreground editing session and the
// background status refresher. Both go through one Panel:
//
//	s := panel.Acquire()     // held for a whole field edit
//	defer s.Release()
//	s.Draw(screen)
//	b, err := s.Wait(ctx)
//
//	panel.WriteLine(0, "Bw:1.2 Mbps")  // locks for one line only
//
// # Buttons
//
// Buttons are sampled on a fixed tick. Within a tick they are tested in the
// order up, down, left, right, select, and the first asserted button wins. A
// button that acted is latched until a tick sees it released, so holding a
// button down produces one press.
//
// # Emulator
//
// Emulator renders the plate in a terminal with Bubble Tea and maps the arrow
// keys (or h/j/k/l) and Enter onto the buttons.
package lcd
