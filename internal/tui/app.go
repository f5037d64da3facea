// internal/tui/app.go
//
// Terminal word search client built on tcell.
// Responsibilities:
//   - Draw the puzzle title, progress line and letter grid.
//   - Drive a game.Session from mouse press / drag / release.
//   - After the last word, wait the transition delay and load the next
//     puzzle (wrapping after the last one).
//
// Notes:
//   - All session access happens on the event loop goroutine. The delayed
//     transition comes back through PostEvent.
//   - Esc or Ctrl-C quits.

package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/puzzle"
)

const headerRows = 2

var (
	styleTitle     = tcell.StyleDefault.Bold(true)
	styleHighlight = tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)
	styleFound     = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
)

// nextPuzzle is posted when the transition delay has elapsed.
type nextPuzzle struct{ index int }

// App is one terminal game.
type App struct {
	screen  tcell.Screen
	catalog *puzzle.Catalog
	session *game.Session
	pointer Pointer
	delay   time.Duration

	status  string
	pending bool // transition to the next puzzle scheduled
}

// New prepares an app showing puzzle start. The screen must already be
// initialized.
func New(screen tcell.Screen, catalog *puzzle.Catalog, start int, delay time.Duration) *App {
	idx := catalog.Index(start)
	p := catalog.Get(idx)
	a := &App{
		screen:  screen,
		catalog: catalog,
		session: game.New("", idx, p.Bounds(), p.WordLocations),
		delay:   delay,
	}
	a.session.Listen(game.ListenerFunc(a.onWordFound))
	a.pointer.Session = a.session
	a.relayout()
	return a
}

// Session exposes the driven session.
func (a *App) Session() *game.Session { return a.session }

// Run draws and processes events until the player quits.
func (a *App) Run() {
	a.draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		if a.Handle(ev) {
			return
		}
		a.draw()
	}
}

// Handle processes one event and reports whether the app should quit.
func (a *App) Handle(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		switch {
		case e.Key() == tcell.KeyEscape, e.Key() == tcell.KeyCtrlC:
			return true
		case e.Key() == tcell.KeyRune && e.Rune() == 'c' && e.Modifiers()&tcell.ModCtrl != 0:
			return true
		}
	case *tcell.EventMouse:
		if a.pending {
			return false
		}
		x, y := e.Position()
		res, done := a.pointer.Handle(x, y, e.Buttons()&tcell.Button1 != 0)
		if done && res.Outcome == game.NoMatch {
			a.status = ""
		}
	case *tcell.EventResize:
		a.relayout()
		a.screen.Sync()
	case *tcell.EventInterrupt:
		if n, ok := e.Data().(nextPuzzle); ok {
			a.load(n.index)
		}
	}
	return false
}

func (a *App) onWordFound(s *game.Session, word string, isLastWord bool) {
	a.status = fmt.Sprintf("Found %s!", word)
	log.Debug().Str("word", word).Int("found", s.FoundCount()).Int("total", s.Total()).Msg("word found")
	if !isLastWord {
		return
	}
	a.pending = true
	a.status = fmt.Sprintf("Found %s! Puzzle complete.", word)
	next := a.catalog.Next(s.PuzzleIndex)
	time.AfterFunc(a.delay, func() {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(nextPuzzle{index: next}))
	})
}

// load swaps in puzzle idx.
func (a *App) load(idx int) {
	p := a.catalog.Get(idx)
	a.session.Load(a.catalog.Index(idx), p.Bounds(), p.WordLocations)
	a.pending = false
	a.status = ""
	a.relayout()
	log.Info().Int("puzzle", a.session.PuzzleIndex).Str("word", p.Word).Msg("puzzle loaded")
}

func (a *App) relayout() {
	w, h := a.screen.Size()
	a.pointer.Layout = NewLayout(a.catalog.Get(a.session.PuzzleIndex).Grid, w, h)
}

func (a *App) draw() {
	a.screen.Clear()
	p := a.catalog.Get(a.session.PuzzleIndex)

	title := fmt.Sprintf("Find the %s words for \"%s\" (%s)", p.TargetLanguage, p.Word, p.SourceLanguage)
	drawText(a.screen, 0, 0, title, styleTitle)
	progress := fmt.Sprintf("%d/%d words  %s", a.session.FoundCount(), a.session.Total(), a.status)
	drawText(a.screen, 0, 1, progress, tcell.StyleDefault)

	found := a.session.FoundCells()
	highlighted := a.session.Highlighted()
	l := a.pointer.Layout
	for row := 0; row < l.Bounds.Rows; row++ {
		for col := 0; col < l.Bounds.Cols; col++ {
			c := game.Cell{Col: col, Row: row}
			style := tcell.StyleDefault
			switch {
			case highlighted.Contains(c):
				style = styleHighlight
			case found[c]:
				style = styleFound
			}
			x, y := l.Origin(c)
			runes := []rune(p.Grid[row][col])
			a.screen.SetContent(x, y, runes[0], runes[1:], style)
		}
	}
	a.screen.Show()
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		runes := gr.Runes()
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += max(1, gr.Width())
	}
}
