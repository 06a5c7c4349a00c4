package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/zyedidia/generic/mapset"

	"github.com/sheikhrachel/go-gol-board/model"
	"github.com/sheikhrachel/go-gol-board/session"
)

const (
	// headerRows is the number of screen lines above the board
	headerRows = 3
	// cellWidth is the number of screen columns per board cell
	cellWidth = 2

	helpLine = "[click] toggle  [n] next  [a] auto  [s] stop  [r] reset  [q] quit"
)

var (
	styleDefault    = tcell.StyleDefault
	styleAlive      = tcell.StyleDefault.Background(tcell.ColorGreen)
	styleDead       = tcell.StyleDefault.Background(tcell.ColorBlack)
	styleLockedLive = tcell.StyleDefault.Background(tcell.ColorYellow)
	styleLockedDead = tcell.StyleDefault.Background(tcell.ColorDarkGray)
	styleError      = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Board draws a session on a tcell screen and turns input into session requests
type Board struct {
	screen  tcell.Screen
	session *session.Session

	status      string
	lastButtons tcell.ButtonMask
	// cells currently drawn with a lock style
	locked mapset.Set[model.Coord]
	// Seq of the last session event applied
	lastSeq uint64
}

// NewBoard binds a session to an initialized screen. The caller owns both.
func NewBoard(screen tcell.Screen, s *session.Session) *Board {
	return &Board{screen: screen, session: s, locked: mapset.New[model.Coord]()}
}

// Run draws the board and handles input until the user quits, ctx is done or
// the session closes
func (b *Board) Run(ctx context.Context) error {
	updates, unsubscribe := b.session.Subscribe()
	defer unsubscribe()

	input := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go b.screen.ChannelEvents(input, quit)

	b.screen.EnableMouse()
	b.drawAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-updates:
			if !ok || ev.Kind == session.EventClosed {
				return nil
			}
			b.applyUpdate(ev)
		case ev, ok := <-input:
			if !ok {
				return nil
			}
			if done := b.handleInput(ctx, ev); done {
				return nil
			}
		}
	}
}

// handleInput dispatches one terminal event and reports whether to quit
func (b *Board) handleInput(ctx context.Context, ev tcell.Event) bool {
	var err error
	switch ev := ev.(type) {
	case *tcell.EventResize:
		b.screen.Sync()
		b.drawAll()
		return false
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
			return true
		case ev.Rune() == 'n':
			err = b.session.OnStepRequested()
		case ev.Rune() == 'a':
			err = b.session.OnAutoStartRequested(ctx)
		case ev.Rune() == 's':
			b.session.OnAutoStopRequested()
		case ev.Rune() == 'r':
			if err = b.session.OnResetRequested(); err == nil {
				err = b.session.Setup()
			}
		default:
			return false
		}
	case *tcell.EventMouse:
		err = b.handleMouse(ev)
	default:
		return false
	}
	b.setStatus(err)
	return false
}

// handleMouse toggles the cell under a fresh primary-button press
func (b *Board) handleMouse(ev *tcell.EventMouse) error {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && b.lastButtons&tcell.Button1 == 0
	b.lastButtons = buttons
	if !pressed {
		return nil
	}

	x, y := ev.Position()
	row, col := y-headerRows, x/cellWidth
	cfg := b.session.Config()
	if row < 0 || row >= cfg.Rows || col < 0 || col >= cfg.Cols {
		return nil
	}
	return b.session.OnUserToggle(row, col)
}

func (b *Board) setStatus(err error) {
	if err == nil {
		b.status = ""
	} else {
		b.status = errors.Cause(err).Error()
	}
	b.drawHeader()
	b.screen.Show()
}

// applyUpdate redraws the header and only the cells a session event changed.
// After a gap in Seq the missed events' cells are unknown, so everything is redrawn.
func (b *Board) applyUpdate(ev session.Event) {
	missed := ev.Seq != b.lastSeq+1
	b.lastSeq = ev.Seq
	if missed {
		b.drawAll()
		return
	}

	b.drawHeader()
	ev.Changed.Each(func(c model.Coord) {
		cell, err := b.session.Cell(c.Row, c.Col)
		if err != nil {
			return
		}
		b.drawCell(c.Row, c.Col, cell)
	})
	// a step clears every lock, including cells whose alive value it kept
	if ev.Kind == session.EventStep || ev.Kind == session.EventReset {
		b.locked.Each(func(c model.Coord) {
			if !ev.Changed.Has(c) {
				b.drawCell(c.Row, c.Col, model.Cell{Alive: b.aliveAt(c)})
			}
		})
	}
	b.screen.Show()
}

func (b *Board) drawAll() {
	b.screen.Clear()
	b.drawHeader()
	b.drawGrid(b.session.Grid())
	b.screen.Show()
}

func (b *Board) drawHeader() {
	grid := b.session.Grid()
	title := fmt.Sprintf("Conway's Game of Life | Generation: %d | %s | Living: %d | Locked: %d",
		b.session.Generation(), b.session.State(), grid.CountLivingCells(), grid.CountLockedCells())
	b.drawLine(0, styleDefault, title)
	b.drawLine(1, styleDefault, helpLine)
	b.drawLine(2, styleError, b.status)
}

func (b *Board) drawLine(y int, style tcell.Style, text string) {
	width, _ := b.screen.Size()
	x := 0
	for _, r := range text {
		if x >= width {
			return
		}
		b.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < width; x++ {
		b.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
}

func (b *Board) drawGrid(g *model.Grid) {
	for r, row := range g.Snapshot() {
		for c, cell := range row {
			b.drawCell(r, c, cell)
		}
	}
}

func (b *Board) aliveAt(c model.Coord) bool {
	cell, err := b.session.Cell(c.Row, c.Col)
	return err == nil && cell.Alive
}

func (b *Board) drawCell(row, col int, cell model.Cell) {
	if cell.Locked {
		b.locked.Put(model.Coord{Row: row, Col: col})
	} else {
		b.locked.Remove(model.Coord{Row: row, Col: col})
	}

	style := styleDead
	switch {
	case cell.Locked && cell.Alive:
		style = styleLockedLive
	case cell.Locked:
		style = styleLockedDead
	case cell.Alive:
		style = styleAlive
	}
	x, y := col*cellWidth, row+headerRows
	for i := range cellWidth {
		b.screen.SetContent(x+i, y, ' ', nil, style)
	}
}
