package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MappingSource tells where a session's mapping came from.
type MappingSource string

const (
	// MappingNone: no usable mapping yet, manual assignment required.
	MappingNone MappingSource = ""
	// MappingSaved: reused from a configuration saved for the same layout.
	MappingSaved MappingSource = "saved"
	// MappingManual: assigned by the caller during this import.
	MappingManual MappingSource = "manual"
)

// Session is the state of one import from upload to commit. It is owned by
// the caller; nothing in this package keeps sessions alive, so abandoning an
// import is just dropping the value.
type Session struct {
	ID         string
	FileName   string
	ConfigName string
	CreatedAt  time.Time

	Table     *RawTable
	HeaderRow int
	Signature string

	Mapping       ColumnMapping
	MappingSource MappingSource
	// Suggested is derived from header names when no saved mapping exists.
	// It is never applied implicitly.
	Suggested ColumnMapping
	// Similar lists saved configurations of resembling layouts.
	Similar []ConfigurationMatch

	Candidates  []Candidate
	Selected    []bool
	Stats       TransformStats
	Transformed bool
}

func newSession(fileName, configName string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		FileName:   fileName,
		ConfigName: configName,
		CreatedAt:  time.Now().UTC(),
		Mapping:    NewColumnMapping(),
		Suggested:  NewColumnMapping(),
	}
}

// HasMapping reports whether the session can be transformed.
func (s *Session) HasMapping() bool {
	return s.MappingSource != MappingNone && s.Mapping.Usable()
}

// setCandidates replaces the candidate list and selects everything.
func (s *Session) setCandidates(cands []Candidate, stats TransformStats) {
	s.Candidates = cands
	s.Selected = make([]bool, len(cands))
	for i := range s.Selected {
		s.Selected[i] = true
	}
	s.Stats = stats
	s.Transformed = true
}

// Select includes or excludes candidate i from the commit.
func (s *Session) Select(i int, selected bool) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.Selected[i] = selected
	return nil
}

// Update replaces candidate i with an edited version. Negative amounts are
// stored as magnitudes and an invalid direction is rejected.
func (s *Session) Update(i int, c Candidate) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if !c.Direction.Valid() {
		return fmt.Errorf("invalid direction %q", c.Direction)
	}
	if c.Date.IsZero() {
		return fmt.Errorf("candidate %d: date is required", i)
	}
	c.Amount = c.Amount.Abs()
	c.Description = CollapseSpaces(c.Description)
	if c.Tags == nil {
		c.Tags = s.Candidates[i].Tags
	}
	s.Candidates[i] = c
	return nil
}

// Selection returns the candidates chosen for commit, in file order.
func (s *Session) Selection() []Candidate {
	out := make([]Candidate, 0, len(s.Candidates))
	for i, c := range s.Candidates {
		if s.Selected[i] {
			out = append(out, c)
		}
	}
	return out
}

// SelectedCount returns how many candidates will be committed.
func (s *Session) SelectedCount() int {
	n := 0
	for _, sel := range s.Selected {
		if sel {
			n++
		}
	}
	return n
}

func (s *Session) checkIndex(i int) error {
	if !s.Transformed {
		return ErrNotTransformed
	}
	if i < 0 || i >= len(s.Candidates) {
		return fmt.Errorf("%w: %d of %d", ErrCandidateIndex, i, len(s.Candidates))
	}
	return nil
}
