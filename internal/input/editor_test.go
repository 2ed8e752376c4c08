package input

import (
	"testing"

	"github.com/muurk/lcdpacket/internal/lcd"
)

func TestIncrementDecrementRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindDecimal, KindHex} {
		for _, r := range kind.Alphabet() {
			c := Cell{Value: r, Kind: kind}
			if got := c.Next().Prev(); got != c {
				t.Errorf("%v %q: Next then Prev = %q", kind, r, got.Value)
			}
			if got := c.Prev().Next(); got != c {
				t.Errorf("%v %q: Prev then Next = %q", kind, r, got.Value)
			}
		}
	}
}

func TestIncrementWraps(t *testing.T) {
	tests := []struct {
		cell Cell
		next rune
		prev rune
	}{
		{Cell{Value: '9', Kind: KindDecimal}, '0', '8'},
		{Cell{Value: '0', Kind: KindDecimal}, '1', '9'},
		{Cell{Value: 'f', Kind: KindHex}, '0', 'e'},
		{Cell{Value: '0', Kind: KindHex}, '1', 'f'},
		{Cell{Value: '9', Kind: KindHex}, 'a', '8'},
		{Cell{Value: '.', Kind: KindLiteral}, '.', '.'},
	}

	for _, tt := range tests {
		if got := tt.cell.Next().Value; got != tt.next {
			t.Errorf("%v %q Next = %q, want %q", tt.cell.Kind, tt.cell.Value, got, tt.next)
		}
		if got := tt.cell.Prev().Value; got != tt.prev {
			t.Errorf("%v %q Prev = %q, want %q", tt.cell.Kind, tt.cell.Value, got, tt.prev)
		}
	}
}

func TestNavigatorInverse(t *testing.T) {
	templates := []string{
		"%i%i",
		"%i%i%i.%i%i%i.%i%i%i.%i%i%i",
		"src:\n%h%h%h%h%h%h-%h%h%h%h%h%h",
		"0x%h%h%h%h",
		"a%ib%hc",
	}

	for _, tmpl := range templates {
		cells := Parse(tmpl)
		for i, c := range cells {
			if !c.Editable() {
				continue
			}
			if got := FindNext(cells, FindPrevious(cells, i)); got != i {
				t.Errorf("%q: FindNext(FindPrevious(%d)) = %d", tmpl, i, got)
			}
			if got := FindPrevious(cells, FindNext(cells, i)); got != i {
				t.Errorf("%q: FindPrevious(FindNext(%d)) = %d", tmpl, i, got)
			}
		}
	}
}

func TestNavigatorSingleCell(t *testing.T) {
	cells := Parse("Prio:\n%i")
	only := FindNext(cells, -1)
	if only != 6 {
		t.Fatalf("FindNext(-1) = %d, want 6", only)
	}
	if got := FindNext(cells, only); got != only {
		t.Errorf("FindNext(%d) = %d, want idempotent", only, got)
	}
	if got := FindPrevious(cells, only); got != only {
		t.Errorf("FindPrevious(%d) = %d, want idempotent", only, got)
	}
}

func TestNavigatorNoInput(t *testing.T) {
	for _, tmpl := range []string{"", "Warning:\nTruncating Pkt", "100%"} {
		cells := Parse(tmpl)
		if got := FindNext(cells, -1); got != NoInput {
			t.Errorf("%q: FindNext = %d, want NoInput", tmpl, got)
		}
		if got := FindPrevious(cells, 0); got != NoInput {
			t.Errorf("%q: FindPrevious = %d, want NoInput", tmpl, got)
		}
	}
}

func TestNavigatorWrapsAround(t *testing.T) {
	cells := Parse("%i.%i")
	if got := FindNext(cells, 2); got != 0 {
		t.Errorf("FindNext(2) = %d, want 0", got)
	}
	if got := FindPrevious(cells, 0); got != 2 {
		t.Errorf("FindPrevious(0) = %d, want 2", got)
	}
}

func TestEditorStateIsImmutable(t *testing.T) {
	start := NewEditorState(Parse("%i%i"))
	moved := start.Increment().Right().Increment().Increment()

	if start.Text() != "00" || start.Focus() != 0 {
		t.Errorf("start changed: %q focus %d", start.Text(), start.Focus())
	}
	if moved.Text() != "12" || moved.Focus() != 1 {
		t.Errorf("moved = %q focus %d, want \"12\" focus 1", moved.Text(), moved.Focus())
	}
}

func TestEditorApply(t *testing.T) {
	state := NewEditorState(Parse("ttl:\n%i%i%i").Seed("ttl:\n064"))

	presses := []lcd.Button{lcd.ButtonUp, lcd.ButtonRight, lcd.ButtonDown, lcd.ButtonLeft, lcd.ButtonLeft}
	for _, b := range presses {
		var done bool
		state, done = state.Apply(b)
		if done {
			t.Fatalf("%v committed the edit", b)
		}
	}

	if got := state.Text(); got != "ttl:\n154" {
		t.Errorf("Text() = %q, want %q", got, "ttl:\n154")
	}
	if got := state.Focus(); got != 7 {
		t.Errorf("Focus() = %d, want 7 (wrapped to last digit)", got)
	}

	final, done := state.Apply(lcd.ButtonSelect)
	if !done || final.Text() != "ttl:\n154" {
		t.Errorf("Select = (%q, %v)", final.Text(), done)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		moves    int
		want     lcd.Screen
	}{
		{
			name:     "single line",
			template: "%i%i%i",
			moves:    2,
			want:     lcd.Screen{Lines: [2]string{"000", ""}, Col: 2, Row: 0, Cursor: true},
		},
		{
			name:     "second line",
			template: "ttl:\n%i%i%i",
			moves:    1,
			want:     lcd.Screen{Lines: [2]string{"ttl:", "000"}, Col: 1, Row: 1, Cursor: true},
		},
		{
			name:     "focus before the break",
			template: "%i\n%i",
			moves:    0,
			want:     lcd.Screen{Lines: [2]string{"0", "0"}, Col: 0, Row: 0, Cursor: true},
		},
		{
			name:     "nothing to edit",
			template: "Warning:\nTruncating Pkt",
			want:     lcd.Screen{Lines: [2]string{"Warning:", "Truncating Pkt"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewEditorState(Parse(tt.template))
			for i := 0; i < tt.moves; i++ {
				state = state.Right()
			}
			if got := state.Render(); got != tt.want {
				t.Errorf("Render() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOptionState(t *testing.T) {
	options := []string{"Ether", "IP", "Finish"}
	state := NewOptionState(options)

	state, _ = state.Apply(lcd.ButtonDown)
	if state.Current() != "Finish" {
		t.Errorf("Down from first = %q, want Finish", state.Current())
	}
	state, _ = state.Apply(lcd.ButtonUp)
	state, _ = state.Apply(lcd.ButtonUp)
	if state.Current() != "IP" {
		t.Errorf("Current() = %q, want IP", state.Current())
	}
	state, _ = state.Apply(lcd.ButtonLeft)
	state, _ = state.Apply(lcd.ButtonRight)
	if state.Index() != 1 {
		t.Errorf("Left/Right moved the option to %d", state.Index())
	}

	final, done := state.Apply(lcd.ButtonSelect)
	if !done || final.Index() != 1 {
		t.Errorf("Select = (%d, %v), want (1, true)", final.Index(), done)
	}
}

func TestOptionStateRender(t *testing.T) {
	state := NewOptionState([]string{"Hello\nWorld"})
	want := lcd.Screen{Lines: [2]string{"Hello", "World"}}
	if got := state.Render(); got != want {
		t.Errorf("Render() = %+v, want %+v", got, want)
	}
}
