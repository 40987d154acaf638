// Package check evaluates attribute and talent checks.
//
// An attribute check rolls one d20 that must not exceed the attribute less the
// modifier. A talent check rolls three d20s against three attributes; each
// point a die exceeds its attribute is paid from the talent value, and what
// is left decides the quality level.
package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/game/sheet"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

var (
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrUnknownTalent    = errors.New("unknown talent")
	ErrRollCount        = errors.New("roller returned wrong number of dice")
	ErrBadRoll          = errors.New("roll outside die range")
)

// Sheet provides the character values checks are made against.
type Sheet interface {
	Attribute(name string) (int, bool)
	Talent(name string) (sheet.Talent, bool)
}

// Recorder receives every finished check.
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// QualityLevel maps remaining points to a quality level. Every three points
// from 16 upwards add one level above 6.
func QualityLevel(remaining int) int {
	switch {
	case remaining >= 16:
		return 6 + (remaining-16)/3
	case remaining >= 13:
		return 5
	case remaining >= 10:
		return 4
	case remaining >= 7:
		return 3
	case remaining >= 4:
		return 2
	default:
		return 1
	}
}

// EvaluateAttribute scores a d20 roll against an attribute value.
func EvaluateAttribute(name string, value, modifier, roll int) AttributeResult {
	target := value - modifier
	r := AttributeResult{
		Attribute:       name,
		Roll:            roll,
		Target:          target,
		Success:         roll <= target,
		CriticalSuccess: roll == 1,
		CriticalFailure: roll == 20,
		Modifier:        modifier,
	}
	if r.Success {
		r.RemainingPoints = target - roll
		r.QualityLevel = QualityLevel(r.RemainingPoints)
	}
	return r
}

// EvaluateTalent scores three d20 rolls against a talent. values holds the
// three attribute values before the modifier.
func EvaluateTalent(t sheet.Talent, values [3]int, modifier int, rolls [3]int) TalentResult {
	r := TalentResult{Talent: t.Name, Modifier: modifier}
	for i := range rolls {
		r.Rolls[i] = RollDetail{Attribute: t.Attributes[i], Value: values[i] - modifier, Roll: rolls[i]}
	}

	r.Critical = classify(rolls)
	switch {
	case r.Critical.Succeeded():
		r.Success = true
		r.RemainingPoints = t.Value
		r.QualityLevel = QualityLevel(t.Value + 1)
		return r
	case r.Critical.Failed():
		r.PointsNeeded = t.Value + 1
		r.RemainingPoints = -1
		return r
	}

	for _, d := range r.Rolls {
		if d.Roll > d.Value {
			r.PointsNeeded += d.Roll - d.Value
		}
	}
	r.Success = r.PointsNeeded <= t.Value
	if r.Success {
		r.RemainingPoints = t.Value - r.PointsNeeded
		r.QualityLevel = QualityLevel(r.RemainingPoints)
	}
	return r
}

// classify counts natural 1s and 20s. Doubles win over singles and 1s are
// checked before 20s.
func classify(rolls [3]int) Critical {
	var ones, twenties int
	for _, v := range rolls {
		switch v {
		case 1:
			ones++
		case 20:
			twenties++
		}
	}
	switch {
	case ones >= 2:
		return CriticalSpectacularSuccess
	case twenties >= 2:
		return CriticalSpectacularFumble
	case ones == 1:
		return CriticalSuccess
	case twenties == 1:
		return CriticalFumble
	}
	return CriticalNone
}

// Service performs checks for one character with a roller.
type Service struct {
	sheet    Sheet
	roller   Roller
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a check service. recorder may be nil.
func NewService(s Sheet, roller Roller, recorder Recorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{sheet: s, roller: roller, recorder: recorder, log: log, now: time.Now}
}

// SetRoller swaps the roller, e.g. between physical and random dice.
func (s *Service) SetRoller(r Roller) { s.roller = r }

// SetClock replaces the time source used to stamp results.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Attribute rolls a d20 against the named attribute.
func (s *Service) Attribute(ctx context.Context, name string, modifier int) (Result, error) {
	value, ok := s.sheet.Attribute(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
	rolls, err := s.roll(ctx, 1)
	if err != nil {
		return Result{}, err
	}
	ar := EvaluateAttribute(name, value, modifier, rolls[0])
	res := Result{Type: KindAttribute, At: s.now(), Attribute: &ar}
	s.record(ctx, res)
	return res, nil
}

// Talent rolls three d20s against the named talent. Unknown talents fail
// with ErrUnknownTalent before any die is rolled.
func (s *Service) Talent(ctx context.Context, name string, modifier int) (Result, error) {
	t, ok := s.sheet.Talent(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTalent, name)
	}
	var values [3]int
	for i, attr := range t.Attributes {
		v, ok := s.sheet.Attribute(attr)
		if !ok {
			return Result{}, fmt.Errorf("talent %s: %w: %s", name, ErrUnknownAttribute, attr)
		}
		values[i] = v
	}
	rolls, err := s.roll(ctx, 3)
	if err != nil {
		return Result{}, err
	}
	tr := EvaluateTalent(t, values, modifier, [3]int{rolls[0], rolls[1], rolls[2]})
	res := Result{Type: KindTalent, At: s.now(), Talent: &tr}
	s.record(ctx, res)
	return res, nil
}

func (s *Service) roll(ctx context.Context, n int) ([]int, error) {
	rolls, err := s.roller.Roll(ctx, dietype.D20, n)
	if err != nil {
		return nil, fmt.Errorf("roll d20: %w", err)
	}
	if len(rolls) != n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrRollCount, len(rolls), n)
	}
	for _, v := range rolls {
		if !dietype.D20.Contains(v) {
			return nil, fmt.Errorf("%w: %d", ErrBadRoll, v)
		}
	}
	return rolls, nil
}

func (s *Service) record(ctx context.Context, r Result) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, r); err != nil {
		s.log.Warn("record check failed", zap.String("name", r.Name()), zap.Error(err))
	}
}
