// Package ui renders hunt snapshots in the terminal with tcell.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/config"
	"github.com/jnesss/hunt-recorder/mhw"
	"github.com/jnesss/hunt-recorder/process"
)

// TargetSource provides the latest info about the attached process
type TargetSource interface {
	Latest() *process.TargetInfo
}

var (
	titleStyle  = tcell.StyleDefault.Bold(true)
	dimStyle    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	playerColor = []tcell.Color{tcell.ColorRed, tcell.ColorBlue, tcell.ColorYellow, tcell.ColorGreen}
	crownColor  = map[mhw.Crown]tcell.Color{
		mhw.CrownSmallGold: tcell.ColorGold,
		mhw.CrownSilver:    tcell.ColorSilver,
		mhw.CrownGold:      tcell.ColorGold,
	}
)

// Terminal draws snapshots and turns key presses into quit requests
type Terminal struct {
	screen tcell.Screen
	events chan tcell.Event
	target TargetSource

	live config.Live
	last *mhw.Snapshot

	closeOnce sync.Once
}

// Open takes over the controlling terminal
func Open(target TargetSource) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create screen")
	}
	return New(screen, target)
}

// New initializes screen and starts reading its events. target may be nil.
func New(screen tcell.Screen, target TargetSource) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize screen")
	}
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{
		screen: screen,
		events: make(chan tcell.Event, 16),
		target: target,
	}
	go t.readEvents()
	return t, nil
}

func (t *Terminal) readEvents() {
	defer close(t.events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		t.events <- ev
	}
}

// Close restores the terminal. It is safe to call more than once.
func (t *Terminal) Close() {
	t.closeOnce.Do(t.screen.Fini)
}

// Configure applies display settings
func (t *Terminal) Configure(live config.Live) {
	t.live = live
	if t.last != nil {
		t.render(*t.last)
	}
}

// Draw renders a snapshot
func (t *Terminal) Draw(snap mhw.Snapshot) {
	t.last = &snap
	t.render(snap)
}

// PollQuit waits up to timeout for an event and reports whether it asks to quit.
// A resize redraws the last snapshot.
func (t *Terminal) PollQuit(timeout time.Duration) bool {
	var ev tcell.Event
	var ok bool
	if timeout <= 0 {
		select {
		case ev, ok = <-t.events:
		default:
			return false
		}
	} else {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case ev, ok = <-t.events:
		case <-timer.C:
			return false
		}
	}
	if !ok {
		return true
	}

	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q')
	case *tcell.EventResize:
		t.screen.Sync()
		if t.last != nil {
			t.render(*t.last)
		}
	}
	return false
}

func (t *Terminal) render(snap mhw.Snapshot) {
	t.screen.Clear()
	width, height := t.screen.Size()

	y := 0
	t.text(0, y, titleStyle, t.header())
	y++
	t.text(0, y, dimStyle, sessionLine(snap.Session))
	y += 2

	total := snap.TotalDamage()
	for i, p := range snap.Players {
		if i >= mhw.MaxPlayers {
			break
		}
		name := p.Name
		if p.LeftSession {
			name = "<Left Session>"
		}
		t.text(0, y, titleStyle, name)
		style := tcell.StyleDefault.Foreground(playerColor[i%len(playerColor)])
		t.gauge(y+1, width, snap.DamageShare(p), fmt.Sprintf("Dmg: %d / %d", p.Damage, total), style)
		y += 3
	}

	for i, m := range snap.Monsters {
		if i >= mhw.MaxMonsters {
			break
		}
		t.text(0, y, titleStyle, m.Name)
		if t.live.ShowCrowns && m.Crown != mhw.CrownNone {
			style := tcell.StyleDefault.Foreground(crownColor[m.Crown])
			t.text(len(m.Name)+1, y, style, m.Crown.String())
		}
		t.gauge(y+1, width, m.HPFraction(), fmt.Sprintf("HP: %d/%d", m.HP, m.MaxHP), tcell.StyleDefault.Foreground(tcell.ColorGreen))
		y += 3
	}

	if t.live.ShowFrametime {
		ms := float64(snap.Frametime) / float64(time.Millisecond)
		t.text(0, height-1, dimStyle, fmt.Sprintf("Frametime: %.2f ms", ms))
	}

	t.screen.Show()
}

func (t *Terminal) header() string {
	if t.target == nil {
		return "hunt-recorder"
	}
	info := t.target.Latest()
	if info == nil {
		return "hunt-recorder"
	}

	exe := filepath.Base(info.ExePath)
	if info.ExePath == "" {
		exe = "?"
	}
	return fmt.Sprintf("hunt-recorder  pid %d  %s  RSS %s", info.PID, exe, formatBytes(info.MemoryUsage))
}

func sessionLine(s mhw.Session) string {
	var b strings.Builder
	if s.ID != "" {
		fmt.Fprintf(&b, "Session %s  host %s", s.ID, s.Hostname)
	} else {
		b.WriteString("No session")
	}
	switch {
	case s.InMission:
		b.WriteString("  [Mission]")
	case s.InExpedition:
		b.WriteString("  [Expedition]")
	}
	return b.String()
}

// gauge draws a full-width bar filled to ratio with label right-aligned after it
func (t *Terminal) gauge(y, width int, ratio float64, label string, style tcell.Style) {
	barWidth := width - len(label) - 1
	if barWidth < 1 {
		t.text(0, y, tcell.StyleDefault, label)
		return
	}
	ratio = min(max(ratio, 0), 1)
	filled := int(ratio * float64(barWidth))

	for x := 0; x < barWidth; x++ {
		if x < filled {
			t.screen.SetContent(x, y, '█', nil, style)
		} else {
			t.screen.SetContent(x, y, '░', nil, dimStyle)
		}
	}
	t.text(barWidth+1, y, tcell.StyleDefault, label)
}

func (t *Terminal) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
