package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/vi-replay/audio"
	"github.com/lixenwraith/vi-replay/constants"
	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/logger"
	"github.com/lixenwraith/vi-replay/playback"
	"github.com/lixenwraith/vi-replay/render"
	"github.com/lixenwraith/vi-replay/replaylog"
	"github.com/lixenwraith/vi-replay/timeline"
)

type playerConfig struct {
	Source  string
	Period  time.Duration
	Palette timeline.Palette
	Cue     *audio.Cue
	Load    playback.LoadFunc
}

// player owns all playback state; only the run loop goroutine touches it
type player struct {
	screen tcell.Screen
	view   *render.Screen
	ctrl   *playback.Controller
	clock  *playback.Clock
	loader *playback.Loader
	cue    *audio.Cue
	source string

	message   string
	isError   bool
	messageAt time.Time
}

func newPlayer(ctx context.Context, screen tcell.Screen, cfg playerConfig) *player {
	load := cfg.Load
	if load == nil {
		palette := cfg.Palette
		load = func(ctx context.Context, src string) (*timeline.Result, error) {
			return playback.LoadSource(ctx, src, timeline.WithPalette(palette))
		}
	}
	return &player{
		screen: screen,
		view:   render.NewScreen(screen),
		ctrl:   playback.NewController(nil, nil),
		clock:  playback.NewClock(cfg.Period),
		loader: playback.NewLoader(ctx, load),
		cue:    cfg.Cue,
		source: cfg.Source,
	}
}

func (p *player) close() {
	p.clock.Stop()
	p.loader.Close()
}

func (p *player) run() {
	eventChan := make(chan tcell.Event, 100)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.screen.Fini()
				fmt.Fprintf(os.Stderr, "\r\nEVENT POLLER CRASHED: %v\r\nStack Trace:\r\n%s\r\n", r, debug.Stack())
				os.Exit(1)
			}
		}()
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	p.reload()
	p.redraw()

	for {
		select {
		case ev := <-eventChan:
			if !p.handleEvent(ev) {
				return
			}
		case res := <-p.loader.Results():
			p.handleLoad(res)
		case <-p.clock.C():
			p.tick()
		}
	}
}

// Render implements playback.Renderer
func (p *player) Render(dims entity.Vec2, snap *timeline.Snapshot, colors *timeline.Colors) {
	p.view.SetStatus(p.status())
	p.view.Render(dims, snap, colors)
	if p.cue != nil && p.ctrl.IsPlaying() {
		p.cue.Observe(snap)
	}
}

func (p *player) status() render.Status {
	return render.Status{
		State:   p.ctrl.State().String(),
		Tick:    p.ctrl.Current(),
		Total:   p.ctrl.Len(),
		Period:  p.clock.Period(),
		Message: p.message,
		IsError: p.isError,
	}
}

func (p *player) redraw() {
	if p.ctrl.Len() == 0 {
		p.view.SetStatus(p.status())
		p.view.Blank()
		return
	}
	p.ctrl.Render(p)
}

func (p *player) tick() {
	if p.message != "" && time.Since(p.messageAt) > constants.StatusMessageTimeout {
		p.setMessage("", false)
		if !p.ctrl.IsPlaying() {
			p.redraw()
		}
	}

	wasPlaying := p.ctrl.IsPlaying()
	p.ctrl.Tick(p)
	if wasPlaying && !p.ctrl.IsPlaying() {
		if p.cue != nil {
			p.cue.PlayEnd()
		}
		p.redraw()
	}
}

func (p *player) setMessage(msg string, isError bool) {
	p.message = msg
	p.isError = isError
	p.messageAt = time.Now()
}

func (p *player) reload() {
	gen := p.loader.Load(p.source)
	p.setMessage(fmt.Sprintf("loading %s", p.source), false)
	logger.Log.WithFields(logrus.Fields{"source": p.source, "generation": gen}).Info("load started")
}

func (p *player) handleLoad(res playback.LoadResult) {
	fields := logrus.Fields{"source": res.Source, "generation": res.Generation, "elapsed": res.Elapsed}
	if !p.loader.Current(res) {
		logger.Log.WithFields(fields).Debug("discarding superseded load")
		return
	}

	if res.Err != nil {
		logger.Log.WithFields(fields).WithError(res.Err).Warn("load failed")
		p.setMessage(loadErrorMessage(res.Err), true)
		p.redraw()
		return
	}

	for _, d := range res.Result.Diagnostics {
		logger.Log.WithFields(fields).Warn(d.Error())
	}
	p.ctrl.Replace(res.Result)
	p.ctrl.Play()

	msg := fmt.Sprintf("loaded %d ticks", p.ctrl.Len())
	if n := len(res.Result.Diagnostics); n > 0 {
		msg = fmt.Sprintf("%s, %d diagnostics", msg, n)
	}
	p.setMessage(msg, false)
	logger.Log.WithFields(fields).WithField("ticks", p.ctrl.Len()).Info("load finished")
	p.redraw()
}

func loadErrorMessage(err error) string {
	var malformed *replaylog.MalformedLogError
	switch {
	case errors.Is(err, replaylog.ErrUnsupportedFormat):
		return "unsupported log format"
	case errors.As(err, &malformed):
		return malformed.Error()
	default:
		return err.Error()
	}
}

// handleEvent applies one terminal event; false means quit
func (p *player) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		p.screen.Sync()
	case *tcell.EventKey:
		if !p.handleKey(ev) {
			return false
		}
	default:
		return true
	}
	p.redraw()
	return true
}

func (p *player) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		p.ctrl.Step(-constants.StepSmall)
	case tcell.KeyRight:
		p.ctrl.Step(constants.StepSmall)
	case tcell.KeyHome:
		p.restart()
	case tcell.KeyEnd:
		p.ctrl.End()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			if !p.ctrl.Toggle() && p.ctrl.Len() == 0 {
				p.setMessage("nothing loaded", true)
			}
		case 'h':
			p.ctrl.Step(-constants.StepSmall)
		case 'l':
			p.ctrl.Step(constants.StepSmall)
		case 'H':
			p.ctrl.Step(-constants.StepLarge)
		case 'L':
			p.ctrl.Step(constants.StepLarge)
		case '0', 'g':
			p.restart()
		case '$', 'G':
			p.ctrl.End()
		case '-':
			p.setPeriod(p.clock.Period() * 2)
		case '+', '=':
			p.setPeriod(p.clock.Period() / 2)
		case 'r':
			p.reload()
		}
	}
	return true
}

func (p *player) restart() {
	if !p.ctrl.Restart() {
		p.setMessage("nothing loaded", true)
	}
}

func (p *player) setPeriod(d time.Duration) {
	period := p.clock.Reset(d)
	p.setMessage(fmt.Sprintf("period %v", period), false)
	logger.Log.WithField("period", period).Debug("playback period changed")
}
