// Package input is the structured input engine: it compiles format templates
// into display cells and runs the cursor and value editing state machine over
// them using only the five plate buttons.
//
// # Format language
//
//	%i   decimal digit cell (0-9)
//	%h   hex digit cell (0-9, a-f)
//	\n   line break; text before it is row 0, text after it row 1
//
// Any other character, including a '%' not followed by i or h, is a literal.
// A template such as
//
//	"src:\n%i%i%i.%i%i%i.%i%i%i.%i%i%i"
//
// shows "src:" on the first row and an editable dotted quad on the second.
//
// # Editing
//
// Up and Down cycle the focused digit through its alphabet, Left and Right
// move between editable cells (skipping literals, wrapping at the ends), and
// Select commits. The committed value is every cell concatenated, literals
// included.
//
// EditorState and OptionState are immutable; Runner feeds them debounced
// button presses from an lcd.Panel.
package input
