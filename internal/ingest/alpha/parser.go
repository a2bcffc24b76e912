package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Session is one workout session of an Alpha Progression export.
type Session struct {
	Name     string
	Date     time.Time
	Duration string
	Blocks   []Block
}

// Block is one numbered exercise inside a session.
type Block struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []Set
}

// Set is a single logged set. Warm-up sets come from the block header.
type Set struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64
	IsWarmup         bool
}

var (
	// "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warm-up info"]
	blockHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// 1;115;8;1
	setLineRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	// WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	columnHeaderRe = regexp.MustCompile(`^#;KG;REPS;RIR$`)
)

// parser accumulates sessions line by line.
type parser struct {
	sessions []Session
	session  *Session
	block    *Block
}

func (p *parser) closeBlock() {
	if p.block != nil {
		p.session.Blocks = append(p.session.Blocks, *p.block)
		p.block = nil
	}
}

func (p *parser) closeSession() {
	if p.session == nil {
		return
	}
	p.closeBlock()
	p.sessions = append(p.sessions, *p.session)
	p.session = nil
}

func (p *parser) line(line string) error {
	switch {
	case line == "":
		p.closeSession()

	case columnHeaderRe.MatchString(line):

	case sessionHeaderRe.MatchString(line):
		m := sessionHeaderRe.FindStringSubmatch(line)
		p.closeSession()
		date, err := parseSessionDate(m[2])
		if err != nil {
			return err
		}
		p.session = &Session{Name: m[1], Date: date, Duration: m[3]}

	case blockHeaderRe.MatchString(line):
		m := blockHeaderRe.FindStringSubmatch(line)
		if p.session == nil {
			return fmt.Errorf("exercise without session: %q", line)
		}
		p.closeBlock()
		num, _ := strconv.Atoi(m[1])
		target, _ := strconv.Atoi(m[4])
		p.block = &Block{
			Number:     num,
			Name:       strings.TrimSpace(m[2]),
			Equipment:  strings.TrimSpace(m[3]),
			TargetReps: target,
			Sets:       parseWarmups(m[6]),
		}

	case setLineRe.MatchString(line):
		m := setLineRe.FindStringSubmatch(line)
		if p.block == nil {
			return fmt.Errorf("set data without exercise: %q", line)
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		p.block.Sets = append(p.block.Sets, Set{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: bw,
			Reps:             reps,
			RIR:              parseEuropeanFloat(m[4]),
		})
	}
	// Anything else is a note or metadata line.
	return nil
}

// Parse reads an Alpha Progression CSV export. Sessions are separated by
// blank lines or by the next session header.
func Parse(r io.Reader) ([]Session, error) {
	var p parser
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := p.line(strings.TrimSpace(sc.Text())); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.closeSession()
	return p.sessions, nil
}

// parseSessionDate accepts "2026-02-19 4:54" and "2026-02-19 16:54".
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse session date %q", s)
}

// parseWarmups reads "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps".
func parseWarmups(s string) []Set {
	if s == "" {
		return nil
	}
	var sets []Set
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, Set{Number: num, WeightKg: weight, IsBodyweightPlus: bw, Reps: reps, IsWarmup: true})
	}
	return sets
}

// parseWeight reads "102,5" and the bodyweight-plus form "+35".
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return parseEuropeanFloat(rest), true
	}
	return parseEuropeanFloat(s), false
}

func parseEuropeanFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return f
}
