package progress

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/cycle"
)

// ExportSnapshot serializes the full aggregate in its canonical JSON form.
func ExportSnapshot(p *ProgressData) ([]byte, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal progress: %w", err)
	}
	return b, nil
}

// ImportSnapshot decodes a snapshot onto the default seed.
func ImportSnapshot(data []byte) (*ProgressData, error) {
	return Decode(data, DefaultSeed())
}

// Decode parses a serialized aggregate. Fields missing from data keep the
// values from seed, days get their defaults filled in and date keys are
// canonicalized. Every failure is a *ParseError and no aggregate is returned.
func Decode(data []byte, seed Seed) (*ProgressData, error) {
	if err := validateSnapshot(data); err != nil {
		return nil, &ParseError{Err: err}
	}

	p := New(seed)
	if err := json.Unmarshal(data, p); err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := normalize(p); err != nil {
		return nil, &ParseError{Err: err}
	}
	return p, nil
}

func normalize(p *ProgressData) error {
	var err error
	if p.StartDate, err = calendar.Canonical(p.StartDate); err != nil {
		return fmt.Errorf("startDate: %w", err)
	}
	if p.TargetDate, err = calendar.Canonical(p.TargetDate); err != nil {
		return fmt.Errorf("targetDate: %w", err)
	}
	if p.LastCompletedDate != "" {
		if p.LastCompletedDate, err = calendar.Canonical(p.LastCompletedDate); err != nil {
			return fmt.Errorf("lastCompletedDate: %w", err)
		}
	}

	days := make(map[string]DayProgress, len(p.Days))
	for key, day := range p.Days {
		date, err := calendar.Parse(key)
		if err != nil {
			return fmt.Errorf("day key: %w", err)
		}
		canonical := calendar.Key(date)
		if _, dup := days[canonical]; dup {
			return fmt.Errorf("day %s appears under more than one key", canonical)
		}
		if day.Date != "" {
			inner, err := calendar.Canonical(day.Date)
			if err != nil {
				return fmt.Errorf("day %s: %w", key, err)
			}
			if inner != canonical {
				return fmt.Errorf("day %s has mismatched date %s", key, day.Date)
			}
		}
		day.Date = canonical
		if day.Theme == "" {
			day.Theme = cycle.ThemeForDate(date)
		}
		if day.Problems, err = normalizeProblems(day.Problems); err != nil {
			return fmt.Errorf("day %s: %w", canonical, err)
		}
		days[canonical] = day
	}
	p.Days = days
	return nil
}

// normalizeProblems fills missing ids as incomplete and sorts ascending.
func normalizeProblems(in []Problem) ([]Problem, error) {
	seen := make(map[int]bool, ProblemsPerDay)
	out := make([]Problem, 0, ProblemsPerDay)
	for _, pr := range in {
		if err := ValidateProblemID(pr.ID); err != nil {
			return nil, err
		}
		if seen[pr.ID] {
			return nil, fmt.Errorf("duplicate problem %d", pr.ID)
		}
		seen[pr.ID] = true
		out = append(out, pr)
	}
	for id := 1; id <= ProblemsPerDay; id++ {
		if !seen[id] {
			out = append(out, Problem{ID: id})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
