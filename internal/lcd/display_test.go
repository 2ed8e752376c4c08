package lcd_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/muurk/lcdpacket/internal/lcd"
	"github.com/muurk/lcdpacket/internal/lcd/lcdtest"
)

func waitAll(t *testing.T, panel *lcd.Panel, n int) []lcd.Button {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s := panel.Acquire()
	defer s.Release()

	var got []lcd.Button
	for i := 0; i < n; i++ {
		b, err := s.Wait(ctx)
		if err != nil {
			t.Fatalf("Wait() after %v: %v", got, err)
		}
		got = append(got, b)
	}
	return got
}

func TestHeldButtonYieldsOnePress(t *testing.T) {
	up := lcd.Press(lcd.ButtonUp)
	d := lcdtest.New(16, up, up, up, up, 0, up, 0, lcd.Press(lcd.ButtonSelect))
	panel := lcd.NewPanel(d, 16, time.Millisecond)

	got := waitAll(t, panel, 3)
	want := []lcd.Button{lcd.ButtonUp, lcd.ButtonUp, lcd.ButtonSelect}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("presses = %v, want %v", got, want)
		}
	}
}

func TestSimultaneousPressResolvesByPriority(t *testing.T) {
	tests := []struct {
		name    string
		pressed lcd.Buttons
		want    lcd.Button
	}{
		{"up beats select", lcd.Press(lcd.ButtonSelect, lcd.ButtonUp), lcd.ButtonUp},
		{"down beats left", lcd.Press(lcd.ButtonLeft, lcd.ButtonDown), lcd.ButtonDown},
		{"left beats right", lcd.Press(lcd.ButtonRight, lcd.ButtonLeft), lcd.ButtonLeft},
		{"right beats select", lcd.Press(lcd.ButtonSelect, lcd.ButtonRight), lcd.ButtonRight},
		{"select alone", lcd.Press(lcd.ButtonSelect), lcd.ButtonSelect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := lcdtest.New(16, tt.pressed)
			panel := lcd.NewPanel(d, 16, time.Millisecond)
			got := waitAll(t, panel, 1)
			if got[0] != tt.want {
				t.Errorf("Wait() = %v, want %v", got[0], tt.want)
			}
		})
	}
}

func TestLatchSurvivesSessions(t *testing.T) {
	sel := lcd.Press(lcd.ButtonSelect)
	d := lcdtest.New(16, sel, sel, sel, lcd.Press(lcd.ButtonDown))
	panel := lcd.NewPanel(d, 16, time.Millisecond)

	first := waitAll(t, panel, 1)
	second := waitAll(t, panel, 1)

	if first[0] != lcd.ButtonSelect {
		t.Errorf("first press = %v, want select", first[0])
	}
	if second[0] != lcd.ButtonDown {
		t.Errorf("second press = %v, want down (held select must not repeat)", second[0])
	}
}

func TestWaitHonoursContext(t *testing.T) {
	d := lcdtest.New(16)
	panel := lcd.NewPanel(d, 16, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := panel.Acquire()
	defer s.Release()
	if _, err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}

func TestWriteLinePadsToWidth(t *testing.T) {
	d := lcdtest.New(16)
	panel := lcd.NewPanel(d, 16, 0)

	panel.WriteLine(1, "CPU:12.5%")

	writes := d.Writes()
	if len(writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(writes))
	}
	if writes[0].Row != 1 || len(writes[0].Text) != 16 {
		t.Errorf("write = %+v, want row 1 padded to 16 columns", writes[0])
	}
}

func TestWriteLineWaitsForSession(t *testing.T) {
	d := lcdtest.New(16)
	panel := lcd.NewPanel(d, 16, 0)

	s := panel.Acquire()
	s.Message("src:\n010.000.024.243")

	done := make(chan struct{})
	go func() {
		panel.WriteLine(0, "Bw:0.0 bps")
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WriteLine ran while a session held the panel")
	case <-time.After(30 * time.Millisecond):
	}

	if got := d.Lines()[0]; got != "src:" {
		t.Errorf("line 0 during session = %q, want %q", got, "src:")
	}

	s.Release()
	<-done
	if got := d.Lines()[0]; got != "Bw:0.0 bps" {
		t.Errorf("line 0 after release = %q, want %q", got, "Bw:0.0 bps")
	}
}

func TestSessionDrawPlacesCursor(t *testing.T) {
	d := lcdtest.New(16)
	panel := lcd.NewPanel(d, 16, 0)

	s := panel.Acquire()
	s.Draw(lcd.Screen{Lines: [2]string{"ttl:", "064"}, Col: 2, Row: 1, Cursor: true})
	s.Release()

	col, row, blink := d.Cursor()
	if col != 2 || row != 1 || !blink {
		t.Errorf("cursor = (%d,%d,%v), want (2,1,true)", col, row, blink)
	}
	if got := d.Lines(); got != [2]string{"ttl:", "064"} {
		t.Errorf("lines = %q", got)
	}
}

func TestButtonsString(t *testing.T) {
	if got := lcd.Press(lcd.ButtonUp, lcd.ButtonSelect).String(); got != "up+select" {
		t.Errorf("String() = %q, want %q", got, "up+select")
	}
	if got := lcd.Buttons(0).String(); got != "none" {
		t.Errorf("String() = %q, want none", got)
	}
}
