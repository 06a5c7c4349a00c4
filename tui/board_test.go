package tui

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/sheikhrachel/go-gol-board/session"
	"github.com/sheikhrachel/go-gol-board/utils"
)

func newSimBoard(t *testing.T) (tcell.SimulationScreen, *session.Session, chan error) {
	t.Helper()
	return newSimBoardSized(t, 6, 8)
}

func newSimBoardSized(t *testing.T, rows, cols int) (tcell.SimulationScreen, *session.Session, chan error) {
	t.Helper()

	cfg := utils.DefaultConfig()
	cfg.Rows, cfg.Cols = rows, cols
	cfg.TickDelay = 5 * time.Millisecond
	s, err := session.New(cfg, session.WithRandomSource(rand.New(rand.NewPCG(5, 6))))
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	screen := tcell.NewSimulationScreen("UTF-8")
	if err = screen.Init(); err != nil {
		t.Fatalf("screen.Init: %v", err)
	}
	screen.SetSize(max(80, cols*cellWidth), rows+headerRows+1)
	t.Cleanup(screen.Fini)

	done := make(chan error, 1)
	go func() { done <- NewBoard(screen, s).Run(context.Background()) }()
	return screen, s, done
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitExit(t *testing.T, done chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("board did not exit")
	}
}

func TestClickTogglesCell(t *testing.T) {
	screen, s, done := newSimBoard(t)

	before, _ := s.Cell(1, 2)
	x, y := 2*cellWidth, 1+headerRows
	screen.InjectMouse(x, y, tcell.Button1, tcell.ModNone)
	screen.InjectMouse(x, y, tcell.ButtonNone, tcell.ModNone)

	waitFor(t, "toggle", func() bool { return s.Generation() == 1 })
	after, _ := s.Cell(1, 2)
	if after.Alive == before.Alive || !after.Locked {
		t.Fatalf("cell after click = %+v, expected flipped and locked", after)
	}

	// a click on the header is not a cell
	screen.InjectMouse(0, 0, tcell.Button1, tcell.ModNone)
	screen.InjectMouse(0, 0, tcell.ButtonNone, tcell.ModNone)

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	waitExit(t, done)
	if s.Generation() != 1 {
		t.Fatalf("generation = %d, expected 1", s.Generation())
	}
}

func TestKeysDriveSession(t *testing.T) {
	screen, s, done := newSimBoard(t)

	screen.InjectKey(tcell.KeyRune, 'n', tcell.ModNone)
	waitFor(t, "step", func() bool { return s.Generation() == 1 })

	screen.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	waitFor(t, "auto-play", func() bool { return s.Generation() >= 4 })

	screen.InjectKey(tcell.KeyRune, 's', tcell.ModNone)
	waitFor(t, "stop", func() bool { return s.State() == session.Stopped })

	screen.InjectKey(tcell.KeyRune, 'r', tcell.ModNone)
	waitFor(t, "reset", func() bool { return s.Generation() == 0 && s.IsSetUp() })

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	waitExit(t, done)
}

func TestHeaderShowsGeneration(t *testing.T) {
	screen, s, done := newSimBoard(t)

	screen.InjectKey(tcell.KeyRune, 'n', tcell.ModNone)
	waitFor(t, "step", func() bool { return s.Generation() == 1 })

	want := "Conway's Game of Life | Generation: 1"
	waitFor(t, "header", func() bool {
		cells, width, _ := screen.GetContents()
		line := make([]rune, 0, len(want))
		for x := 0; x < width && x < len(want); x++ {
			if runes := cells[x].Runes; len(runes) > 0 {
				line = append(line, runes[0])
			}
		}
		return string(line) == want
	})

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	waitExit(t, done)
}

func TestSessionCloseEndsRun(t *testing.T) {
	_, s, done := newSimBoard(t)
	// let Run subscribe before closing
	time.Sleep(20 * time.Millisecond)
	_ = s.Close()
	waitExit(t, done)
}

// staleCells counts board cells whose on-screen background disagrees with the session
func staleCells(screen tcell.SimulationScreen, s *session.Session) int {
	cells, width, _ := screen.GetContents()
	stale := 0
	for r, row := range s.Grid().Snapshot() {
		for c, cell := range row {
			want := styleDead
			switch {
			case cell.Locked && cell.Alive:
				want = styleLockedLive
			case cell.Locked:
				want = styleLockedDead
			case cell.Alive:
				want = styleAlive
			}
			_, wantBg, _ := want.Decompose()
			for i := range cellWidth {
				_, bg, _ := cells[(r+headerRows)*width+c*cellWidth+i].Style.Decompose()
				if bg != wantBg {
					stale++
					break
				}
			}
		}
	}
	return stale
}

func TestBurstOfStepsLeavesScreenInSync(t *testing.T) {
	screen, s, done := newSimBoardSized(t, 30, 50)

	for range 300 {
		if err := s.OnStepRequested(); err != nil {
			t.Fatalf("OnStepRequested: %v", err)
		}
	}
	_ = s.OnUserToggle(4, 7)

	waitFor(t, "screen to match the board", func() bool { return staleCells(screen, s) == 0 })

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	waitExit(t, done)
}
