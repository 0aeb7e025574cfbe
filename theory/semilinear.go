package theory

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SemilinearSet is the set
//
//	Constants ∪ {CycleHead + k*Period + r : r ∈ PeriodicConstants, k >= 0}
//
// Constants and PeriodicConstants are kept sorted without duplicates.
type SemilinearSet struct {
	CycleHead         int
	Period            int
	Constants         []int
	PeriodicConstants []int
}

func (s *SemilinearSet) AddConstant(c int) {
	s.Constants = insertSorted(s.Constants, c)
}

func (s *SemilinearSet) AddPeriodicConstant(r int) {
	s.PeriodicConstants = insertSorted(s.PeriodicConstants, r)
}

func insertSorted(xs []int, x int) []int {
	i, found := slices.BinarySearch(xs, x)
	if found {
		return xs
	}
	return slices.Insert(xs, i, x)
}

func (s *SemilinearSet) IsEmptySet() bool {
	return len(s.Constants) == 0 && len(s.PeriodicConstants) == 0
}

// HasOnlyConstants reports whether s is finite.
func (s *SemilinearSet) HasOnlyConstants() bool {
	return len(s.PeriodicConstants) == 0
}

// Contains reports whether n is a member of s.
func (s *SemilinearSet) Contains(n int) bool {
	if _, found := slices.BinarySearch(s.Constants, n); found {
		return true
	}
	if s.Period <= 0 || n < s.CycleHead {
		return false
	}
	_, found := slices.BinarySearch(s.PeriodicConstants, (n-s.CycleHead)%s.Period)
	return found
}

// Validate checks that s can be laid out as a unary automaton: constants
// lie before the cycle head and residues lie within the period.
func (s *SemilinearSet) Validate() error {
	for _, c := range s.Constants {
		if c < 0 {
			return fmt.Errorf("%w: negative constant %d", ErrSemilinear, c)
		}
		if !s.HasOnlyConstants() && c >= s.CycleHead {
			return fmt.Errorf("%w: constant %d is not before cycle head %d", ErrSemilinear, c, s.CycleHead)
		}
	}
	if s.HasOnlyConstants() {
		return nil
	}
	if s.CycleHead < 0 || s.Period <= 0 {
		return fmt.Errorf("%w: cycle head %d period %d", ErrSemilinear, s.CycleHead, s.Period)
	}
	for _, r := range s.PeriodicConstants {
		if r < 0 || r >= s.Period {
			return fmt.Errorf("%w: residue %d outside period %d", ErrSemilinear, r, s.Period)
		}
	}
	return nil
}

func (s *SemilinearSet) Clone() *SemilinearSet {
	return &SemilinearSet{
		CycleHead:         s.CycleHead,
		Period:            s.Period,
		Constants:         slices.Clone(s.Constants),
		PeriodicConstants: slices.Clone(s.PeriodicConstants),
	}
}

// String renders s in the form accepted by ParseSemilinearSet.
func (s *SemilinearSet) String() string {
	return joinInts(s.Constants) + ";" +
		strconv.Itoa(s.CycleHead) + "," + strconv.Itoa(s.Period) + ":" +
		joinInts(s.PeriodicConstants)
}

func joinInts(xs []int) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		ss[i] = strconv.Itoa(x)
	}
	return strings.Join(ss, ",")
}

// ParseSemilinearSet parses "c1,c2;head,period:r1,r2". The part after the
// semicolon may be omitted for a finite set.
func ParseSemilinearSet(v string) (*SemilinearSet, error) {
	s := &SemilinearSet{}
	consts, cycle, hasCycle := strings.Cut(v, ";")
	cs, err := parseInts(consts)
	if err != nil {
		return nil, err
	}
	for _, c := range cs {
		s.AddConstant(c)
	}
	if hasCycle {
		shape, residues, _ := strings.Cut(cycle, ":")
		hp, err := parseInts(shape)
		if err != nil {
			return nil, err
		}
		if len(hp) != 2 {
			return nil, fmt.Errorf("%w: want head,period in %q", ErrSemilinear, shape)
		}
		s.CycleHead, s.Period = hp[0], hp[1]
		rs, err := parseInts(residues)
		if err != nil {
			return nil, err
		}
		for _, r := range rs {
			s.AddPeriodicConstant(r)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseInts(v string) ([]int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	var res []int
	for _, f := range strings.Split(v, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSemilinear, err)
		}
		res = append(res, i)
	}
	return res, nil
}
