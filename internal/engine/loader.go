// Package engine is the composition root: it wires the startup-loaded
// RatingBook and Bracket together with the store-backed completed games
// and scenario/override state to produce the TournamentState every
// external-interface operation runs against.
package engine

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

// LoadRatingsFile reads a pipe-delimited ratings file: one
// "name|offense|defense|tempo" record per line.
func LoadRatingsFile(path string) (map[string]ratings.Rating, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ratings file: %w", err)
	}
	defer f.Close()

	out := make(map[string]ratings.Rating)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}
		offense, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing offense for %q: %w", parts[0], err)
		}
		defense, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing defense for %q: %w", parts[0], err)
		}
		tempo, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing tempo for %q: %w", parts[0], err)
		}
		name := strings.TrimSpace(parts[0])
		out[name] = ratings.Rating{Name: name, Offense: offense, Defense: defense, Tempo: tempo}
	}
	return out, scanner.Err()
}

// LoadEquivalenceClasses reads a YAML list of alias lists; the first
// entry of each list is canonical.
func LoadEquivalenceClasses(path string) ([]ratings.EquivalenceClass, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening equivalence classes file: %w", err)
	}

	var entries [][]string
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing equivalence classes: %w", err)
	}

	classes := make([]ratings.EquivalenceClass, 0, len(entries))
	for _, entry := range entries {
		classes = append(classes, ratings.EquivalenceClass(entry))
	}
	return classes, nil
}

// LoadBracketFile reads a CSV bracket file: each row has one team name
// (a single-occupant slot) or two (a play-in slot, split 50/50; only an
// override for the pair replaces that split, ratings do not).
func LoadBracketFile(path string) ([]bracket.Slot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bracket file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var slots []bracket.Slot
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading bracket file: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		switch len(row) {
		case 1:
			slots = append(slots, bracket.Slot{strings.TrimSpace(row[0]): 1.0})
		case 2:
			name1, name2 := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
			slots = append(slots, bracket.Slot{name1: 0.5, name2: 0.5})
		default:
			return nil, fmt.Errorf("bracket row has %d fields, want 1 or 2", len(row))
		}
	}
	return slots, nil
}
