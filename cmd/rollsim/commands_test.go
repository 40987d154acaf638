package main

import (
	"bytes"
	"flag"
	"io"
	"slices"
	"strings"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Faultbox/dicebowl/internal/config"
	"github.com/Faultbox/dicebowl/internal/game/check"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		pos  []string
		mod  int
	}{
		{"flags after name", []string{"MU", "-mod", "2"}, []string{"MU"}, 2},
		{"flags before name", []string{"-mod", "-1", "KL"}, []string{"KL"}, -1},
		{"no name", []string{"-mod", "3"}, nil, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			mod := fs.Int("mod", 0, "")
			pos, err := parseArgs(fs, tt.args)
			if err != nil {
				t.Fatalf("parseArgs: %v", err)
			}
			if !slices.Equal(pos, tt.pos) {
				t.Errorf("positional = %v, want %v", pos, tt.pos)
			}
			if *mod != tt.mod {
				t.Errorf("mod = %d, want %d", *mod, tt.mod)
			}
		})
	}
}

func TestParseArgsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := parseArgs(fs, []string{"MU", "-nope"}); err == nil {
		t.Error("unknown flag accepted")
	}
}

func TestPrinterLanguage(t *testing.T) {
	c := common{lang: "de"}
	if got := c.printer().Sprintf("%d", 1234567); got != "1.234.567" {
		t.Errorf("de = %q", got)
	}
	c.lang = "not a language"
	if got := c.printer().Sprintf("%d", 1234567); got != "1,234,567" {
		t.Errorf("fallback = %q", got)
	}
}

func TestDeadlineUsesTimeout(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var c common
	c.register(fs, config.Default())
	if err := fs.Parse([]string{"-timeout", "1ms"}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := c.deadline()
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("context has no deadline")
	}
}

func TestPrintResult(t *testing.T) {
	p := message.NewPrinter(language.English)
	tests := []struct {
		name string
		r    check.Result
		want []string
	}{
		{
			name: "attribute",
			r: check.Result{Attribute: &check.AttributeResult{
				Attribute: "MU", Roll: 4, Target: 12, Modifier: 2, Success: true, QualityLevel: 3,
			}},
			want: []string{"MU (modifier", "target 12): rolled 4", "success, QS 3"},
		},
		{
			name: "talent fumble",
			r: check.Result{Talent: &check.TalentResult{
				Talent: "Klettern",
				Rolls: [3]check.RollDetail{
					{Attribute: "MU", Value: 12, Roll: 20},
					{Attribute: "GE", Value: 13, Roll: 20},
					{Attribute: "KK", Value: 11, Roll: 5},
				},
				PointsNeeded: 5,
				Critical:     check.CriticalFumble,
			}},
			want: []string{"Klettern (modifier", "MU 20/12 GE 20/13 KK 5/11, 5 points used", "failed", "fumble"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResult(&buf, p, tt.r)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q lacks %q", buf.String(), w)
				}
			}
		})
	}
}
