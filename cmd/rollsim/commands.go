package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Faultbox/dicebowl/internal/api"
	"github.com/Faultbox/dicebowl/internal/config"
	"github.com/Faultbox/dicebowl/internal/game/check"
	"github.com/Faultbox/dicebowl/internal/game/history"
	"github.com/Faultbox/dicebowl/internal/game/sheet"
	"github.com/Faultbox/dicebowl/internal/logger"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

// common are the options every command accepts.
type common struct {
	random  bool
	lang    string
	timeout time.Duration
}

func (c *common) register(fs *flag.FlagSet, cfg *config.Config) {
	fs.BoolVar(&c.random, "random", false, "Use a random number source instead of the physics")
	fs.StringVar(&c.lang, "lang", "en", "Language for number formatting")
	fs.DurationVar(&c.timeout, "timeout", cfg.Server.RollTimeout, "Give up on a roll after this long")
}

func (c *common) printer() *message.Printer {
	tag, err := language.Parse(c.lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

func (c *common) deadline() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if c.timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// parseArgs accepts flags before and after the positional arguments, so
// "attr MU -mod 2" works like "attr -mod 2 MU".
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func cmdThrow(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("throw", flag.ContinueOnError)
	var c common
	c.register(fs, cfg)
	typeName := fs.String("type", "d20", "Die type (d4, d6, d8, d10, d12, d20, d100)")
	count := fs.Int("count", 1, "Number of dice")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	t, err := dietype.Parse(*typeName)
	if err != nil {
		return err
	}

	b := newBowl(cfg, c.random)
	ctx, cancel := c.deadline()
	defer cancel()

	start := time.Now()
	values, err := b.roller.Roll(ctx, t, *count)
	err = multierr.Append(err, b.Close())
	if err != nil {
		return err
	}

	p := c.printer()
	sum := 0
	for i, v := range values {
		sum += v
		p.Printf("%s #%d: %d\n", t, i+1, v)
	}
	if len(values) > 1 {
		p.Printf("sum: %d\n", sum)
	}
	logger.Log.Debug("throw settled",
		zap.Stringer("type", t),
		zap.Ints("values", values),
		zap.Uint64("steps", b.session.Driver().TotalSteps()),
		zap.Duration("took", time.Since(start)))
	return nil
}

func cmdAttribute(cfg *config.Config, args []string) error {
	return runCheck(cfg, "attr", args, func(ctx context.Context, s *check.Service, name string, mod int) (check.Result, error) {
		return s.Attribute(ctx, name, mod)
	})
}

func cmdTalent(cfg *config.Config, args []string) error {
	return runCheck(cfg, "talent", args, func(ctx context.Context, s *check.Service, name string, mod int) (check.Result, error) {
		return s.Talent(ctx, name, mod)
	})
}

type checkFunc func(ctx context.Context, s *check.Service, name string, mod int) (check.Result, error)

func runCheck(cfg *config.Config, command string, args []string, fn checkFunc) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	var c common
	c.register(fs, cfg)
	mod := fs.Int("mod", 0, "Modifier added to the checked values")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("usage: rollsim %s <name> [-mod n]", command)
	}

	character, err := sheet.LoadCharacterOrDefault(cfg.Data.CharacterFile)
	if err != nil {
		return err
	}
	store, recorder := openHistory(cfg)

	b := newBowl(cfg, c.random)
	svc := check.NewService(character, b.roller, recorder, logger.Named("check"))

	ctx, cancel := c.deadline()
	defer cancel()
	res, err := fn(ctx, svc, positional[0], *mod)

	err = multierr.Append(err, b.Close())
	if store != nil {
		err = multierr.Append(err, store.Close())
	}
	if err != nil {
		return err
	}
	printResult(os.Stdout, c.printer(), res)
	return nil
}

// openHistory returns the configured store, or nil and a no-op recorder
// when it is disabled or cannot be opened.
func openHistory(cfg *config.Config) (*history.Store, check.Recorder) {
	if cfg.Data.HistoryDB == "" {
		return nil, check.NewMemoryHistory(cfg.Data.HistorySize)
	}
	store, err := history.Open(cfg.Data.HistoryDB)
	if err != nil {
		logger.Log.Warn("roll history disabled", zap.String("path", cfg.Data.HistoryDB), zap.Error(err))
		return nil, check.NewMemoryHistory(cfg.Data.HistorySize)
	}
	return store, store
}

func printResult(w io.Writer, p *message.Printer, r check.Result) {
	switch {
	case r.Attribute != nil:
		a := r.Attribute
		p.Fprintf(w, "%s (modifier %+d, target %d): rolled %d\n", a.Attribute, a.Modifier, a.Target, a.Roll)
	case r.Talent != nil:
		t := r.Talent
		p.Fprintf(w, "%s (modifier %+d):", t.Talent, t.Modifier)
		for _, d := range t.Rolls {
			p.Fprintf(w, " %s %d/%d", d.Attribute, d.Roll, d.Value)
		}
		p.Fprintf(w, ", %d points used\n", t.PointsNeeded)
	}
	if r.Success() {
		p.Fprintf(w, "success, QS %d\n", r.QualityLevel())
	} else {
		p.Fprintf(w, "failed\n")
	}
	if label := r.CriticalLabel(); label != "" {
		p.Fprintf(w, "%s\n", label)
	}
}

func cmdHistory(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	var c common
	c.register(fs, cfg)
	limit := fs.Int("limit", 20, "Number of checks to show")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if cfg.Data.HistoryDB == "" {
		return errors.New("no history database configured")
	}

	store, err := history.Open(cfg.Data.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := c.deadline()
	defer cancel()
	results, err := store.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	p := c.printer()
	for _, r := range results {
		p.Printf("%s  ", r.At.Local().Format(time.DateTime))
		printResult(os.Stdout, p, r)
	}
	p.Printf("%d of %d checks\n", len(results), total)
	return nil
}

func cmdServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var c common
	c.register(fs, cfg)
	addr := fs.String("addr", cfg.Server.Addr, "Listen address")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	character, err := sheet.LoadCharacterOrDefault(cfg.Data.CharacterFile)
	if err != nil {
		return err
	}
	store, recorder := openHistory(cfg)
	b := newBowl(cfg, c.random)
	svc := check.NewService(character, b.roller, recorder, logger.Named("check"))

	var hist api.History
	if store != nil {
		hist = store
	}
	log := logger.Named("api")
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.NewRouter(api.NewHandler(svc, hist, b.roller, character, log), c.timeout),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", *addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err = <-errc:
	case <-ctx.Done():
		log.Info("shutting down")
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = srv.Shutdown(shutdown)
		cancel()
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	err = multierr.Append(err, b.Close())
	if store != nil {
		err = multierr.Append(err, store.Close())
	}
	return err
}
