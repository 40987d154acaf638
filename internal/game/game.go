// Package game implements the desktop client: window, input, the dice
// session and checks against the character sheet.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/api"
	"github.com/Faultbox/dicebowl/internal/config"
	"github.com/Faultbox/dicebowl/internal/engine/audio"
	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	"github.com/Faultbox/dicebowl/internal/engine/input"
	"github.com/Faultbox/dicebowl/internal/engine/renderer"
	"github.com/Faultbox/dicebowl/internal/engine/shadow"
	"github.com/Faultbox/dicebowl/internal/engine/window"
	"github.com/Faultbox/dicebowl/internal/game/check"
	"github.com/Faultbox/dicebowl/internal/game/history"
	"github.com/Faultbox/dicebowl/internal/game/session"
	"github.com/Faultbox/dicebowl/internal/game/sheet"
	"github.com/Faultbox/dicebowl/internal/logger"
)

// outcome is a finished check or throw reported back to the render loop.
type outcome struct {
	text string
	err  error
}

// Game is the desktop client.
type Game struct {
	config *config.Config
	log    *zap.Logger

	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	audio    *audio.Manager
	session  *session.Session
	roller   *session.PhysicalRoller

	character *sheet.Character
	looks     *sheet.Appearances
	checks    *check.Service
	recent    *check.MemoryHistory
	store     *history.Store
	server    *http.Server

	controls *Controls
	results  chan outcome
	busy     bool
	last     string

	cancelLoad context.CancelFunc
}

// New creates the window, renderer, audio and session.
func New(cfg *config.Config) (*Game, error) {
	log := logger.Named("game")
	g := &Game{
		config:  cfg,
		log:     log,
		results: make(chan outcome, 4),
	}

	if err := g.loadSheets(); err != nil {
		return nil, err
	}

	var err error
	g.window, err = window.New(window.Config{
		Title:      "dicebowl",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	g.audio = audio.New(audio.Options{
		QueueSize:    cfg.Audio.QueueSize,
		MaxVoices:    cfg.Audio.MaxVoices,
		MasterVolume: float64(cfg.Audio.MasterVolume),
		SFXVolume:    float64(cfg.Audio.SFXVolume),
		Muted:        cfg.Audio.Muted,
	}, nil, logger.Named("audio"))

	// The renderer needs the session's label atlas, so the view gets its
	// painter once both exist. No die is spawned before then.
	opts := session.OptionsFromConfig(cfg)
	v := &view{}
	g.session = session.New(opts, g.audio, v, v, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), logger.Named("session"))
	g.roller = session.NewPhysicalRoller(g.session)

	width, height := g.window.DrawableSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: [3]float32{0.08, 0.08, 0.1},
		Wireframes: cfg.Graphics.Wireframes,
		Shadows:    cfg.Graphics.Shadows,
		Shadow:     shadowSettings(cfg.Graphics),
	}, g.session.Dice().Atlas(), opts.Physics.Bowl, logger.Named("renderer"))
	if err != nil {
		_ = g.session.Close()
		_ = g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.painter = g.renderer
	g.startAudio()

	g.recent = check.NewMemoryHistory(cfg.Data.HistorySize)
	var recorder check.Recorder = g.recent
	if cfg.Data.HistoryDB != "" {
		if g.store, err = history.Open(cfg.Data.HistoryDB); err != nil {
			log.Warn("roll history disabled", zap.String("path", cfg.Data.HistoryDB), zap.Error(err))
		} else {
			recorder = check.Tee{g.recent, g.store}
		}
	}
	g.checks = check.NewService(g.character, g.roller, recorder, logger.Named("check"))
	g.controls = NewControls(g.character)

	if cfg.Server.Enabled {
		g.serve()
	}

	g.input = input.New(input.DefaultBindings())
	g.updateTitle()
	log.Info("game initialized")
	return g, nil
}

func (g *Game) loadSheets() error {
	var err error
	g.character, err = sheet.LoadCharacterOrDefault(g.config.Data.CharacterFile)
	if err != nil {
		return fmt.Errorf("character sheet: %w", err)
	}
	g.looks, err = sheet.LoadAppearances(g.config.Data.AppearanceFile)
	if err != nil {
		return fmt.Errorf("appearances: %w", err)
	}
	applyTalentColors(g.looks, g.config.Dice.UseTalentColors)
	return nil
}

// applyTalentColors lets the config switch talent colors either way; nil
// keeps what the appearance file says.
func applyTalentColors(looks *sheet.Appearances, override *bool) {
	if looks != nil && override != nil {
		looks.UseTalentColors = *override
	}
}

func shadowSettings(g config.GraphicsConfig) shadow.Settings {
	s := shadow.DefaultSettings()
	if g.ShadowMapSize > 0 {
		s.Resolution = int32(g.ShadowMapSize)
	}
	return s
}

// startAudio opens the speaker and loads the collision sounds in the
// background. The session runs silently until they arrive.
func (g *Game) startAudio() {
	if err := g.audio.Init(); err != nil {
		g.log.Warn("audio unavailable", zap.Error(err))
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.cancelLoad = cancel
	errs := g.audio.LoadAsync(ctx, map[audio.Sound]string{
		audio.SoundDie:  g.config.Audio.DieSound,
		audio.SoundBowl: g.config.Audio.BowlSound,
	})
	go func() {
		failed := 0
		for range errs {
			failed++
		}
		if failed > 0 {
			g.log.Info("playing without some collision sounds", zap.Int("missing", failed))
		}
	}()
}

func (g *Game) serve() {
	h := api.NewHandler(g.checks, historyOrNil(g.store), g.roller, g.character, logger.Named("api"))
	g.server = &http.Server{
		Addr:         g.config.Server.Addr,
		Handler:      api.NewRouter(h, g.config.Server.RollTimeout),
		ReadTimeout:  g.config.Server.ReadTimeout,
		WriteTimeout: g.config.Server.WriteTimeout,
	}
	go func() {
		g.log.Info("api listening", zap.String("addr", g.server.Addr))
		if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.log.Error("api stopped", zap.Error(err))
		}
	}()
}

// historyOrNil keeps a nil store from becoming a non-nil interface.
func historyOrNil(s *history.Store) api.History {
	if s == nil {
		return nil
	}
	return s
}

// Run starts the main loop.
func (g *Game) Run() error {
	g.running = true

	frameCount := 0
	fpsTimer := time.Now()
	var minFrame time.Duration
	if g.config.Graphics.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(g.config.Graphics.FPSLimit)
	}

	g.log.Info("starting main loop")
	for g.running {
		start := time.Now()

		if g.input.Update() {
			g.running = false
			break
		}
		for _, ev := range g.input.Events() {
			switch ev.Type {
			case input.EventWindowResize:
				g.renderer.Resize(g.window.DrawableSize())
			case input.EventSurfaceLost:
				g.session.SurfaceLost()
			case input.EventSurfaceRestored:
				g.session.SurfaceRestored()
			}
		}
		for _, a := range g.input.Actions() {
			g.handle(a)
		}
		g.collect()

		g.session.Frame(start)
		g.window.SwapBuffers()

		frameCount++
		if since := time.Since(fpsTimer); since >= time.Second {
			if g.config.Graphics.ShowFPS {
				g.log.Debug("fps", zap.Int("count", frameCount), zap.Int("voices", g.audio.Voices()))
			}
			frameCount = 0
			fpsTimer = time.Now()
		}
		if minFrame > 0 {
			if rest := minFrame - time.Since(start); rest > 0 {
				time.Sleep(rest)
			}
		}
	}
	return nil
}

func (g *Game) handle(a input.Action) {
	c := g.controls
	switch a {
	case input.ActionQuit:
		g.running = false
	case input.ActionThrow:
		g.throw()
	case input.ActionNextType:
		c.CycleType(1)
	case input.ActionPrevType:
		c.CycleType(-1)
	case input.ActionMoreDice:
		c.AddDice(1)
	case input.ActionFewerDice:
		c.AddDice(-1)
	case input.ActionAttributeCheck:
		name, mod := c.Attribute(), c.Modifier
		g.roller.SetAppearances(g.looks.ForAttribute(name))
		g.runCheck(func(ctx context.Context) (check.Result, error) {
			return g.checks.Attribute(ctx, name, mod)
		})
	case input.ActionTalentCheck:
		name, mod := c.Talent(), c.Modifier
		if t, ok := g.character.Talent(name); ok {
			looks := g.looks.ForTalent(t)
			g.roller.SetAppearances(looks[:]...)
		}
		g.runCheck(func(ctx context.Context) (check.Result, error) {
			return g.checks.Talent(ctx, name, mod)
		})
	case input.ActionNextAttribute:
		c.NextAttribute()
	case input.ActionNextTalent:
		c.NextTalent()
	case input.ActionModifierUp:
		c.AddModifier(1)
	case input.ActionModifierDown:
		c.AddModifier(-1)
	case input.ActionFaster:
		g.session.SetAnimationSpeed(min(g.session.Driver().Speed()*2, MaxSpeed))
	case input.ActionSlower:
		g.session.SetAnimationSpeed(max(g.session.Driver().Speed()/2, MinSpeed))
	case input.ActionReset:
		g.session.Reset()
		g.last = ""
	case input.ActionWireframes:
		on := !g.renderer.Wireframes()
		g.renderer.SetWireframes(on)
		g.session.Dice().SetWireframes(on)
	case input.ActionMute:
		g.audio.SetMuted(!g.audio.Muted())
	case input.ActionScreenshot:
		g.renderer.Capture()
	}
	g.updateTitle()
}

// throw makes a free throw of the selected dice, colored like the
// selected attribute, and reports the faces once they settle.
func (g *Game) throw() {
	if g.busy {
		return
	}
	t, n := g.controls.Type(), g.controls.Count
	looks := make([]geometry.Appearance, n)
	for i := range looks {
		looks[i] = g.looks.ForAttribute(g.controls.Attribute())
	}
	ids, err := g.session.Throw(t, n, looks...)
	if err != nil {
		g.log.Warn("throw failed", zap.Error(err))
		return
	}
	done := make(chan session.Outcome, 1)
	g.session.Await(t, ids, done)
	g.busy = true
	go func() {
		out := <-done
		if out.Err != nil {
			g.results <- outcome{err: out.Err}
			return
		}
		g.results <- outcome{text: DescribeThrow(out.Type, out.Values)}
	}()
}

// runCheck rolls in the background; the physical roller needs Frame to keep
// running on this goroutine.
func (g *Game) runCheck(fn func(ctx context.Context) (check.Result, error)) {
	if g.busy {
		return
	}
	g.busy = true
	timeout := g.config.Server.RollTimeout
	go func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		r, err := fn(ctx)
		if err != nil {
			g.results <- outcome{err: err}
			return
		}
		g.results <- outcome{text: Describe(r)}
	}()
}

// collect picks up finished throws and checks without blocking.
func (g *Game) collect() {
	for {
		select {
		case o := <-g.results:
			g.busy = false
			if o.err != nil {
				g.log.Info("roll failed", zap.Error(o.err))
				g.last = o.err.Error()
			} else {
				g.log.Info("roll", zap.String("result", o.text))
				g.last = o.text
			}
			g.updateTitle()
		default:
			return
		}
	}
}

func (g *Game) updateTitle() {
	g.window.SetTitle(g.controls.Title(g.session.Driver().Speed(), g.audio.Muted(), g.last))
}

// Close releases everything New created. It is safe to call more than once.
func (g *Game) Close() error {
	g.log.Info("closing game")
	var err error
	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = multierr.Append(err, g.server.Shutdown(ctx))
		cancel()
		g.server = nil
	}
	if g.cancelLoad != nil {
		g.cancelLoad()
	}
	// the session closes the renderer through its view
	err = multierr.Append(err, g.session.Close())
	if g.audio != nil {
		g.audio.Close()
	}
	if g.store != nil {
		err = multierr.Append(err, g.store.Close())
	}
	if g.window != nil {
		err = multierr.Append(err, g.window.Close())
	}
	return err
}
