package decorate

import (
	"path"
	"strings"

	"github.com/okian/minintup/internal/domain/record"
)

// Activation restricts which input fields are readable. Patterns use
// path.Match syntax ("lep_*"). An empty activation allows every field.
type Activation struct {
	patterns []string
}

// ParseActivation parses a comma-separated pattern list.
func ParseActivation(list string) Activation {
	var a Activation
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			a.patterns = append(a.patterns, p)
		}
	}
	return a
}

// NewActivation builds an activation from a pattern slice.
func NewActivation(patterns []string) Activation {
	return ParseActivation(strings.Join(patterns, ","))
}

// Allows reports whether the field is active.
func (a Activation) Allows(name string) bool {
	if len(a.patterns) == 0 {
		return true
	}
	for _, p := range a.patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// reader reads typed fields with defaults and remembers which fields were
// requested but absent or inactive.
type reader struct {
	rec     record.Record
	act     Activation
	missing []string
}

func (r *reader) miss(name string) {
	r.missing = append(r.missing, name)
}

func (r *reader) has(name string) bool {
	return r.act.Allows(name) && r.rec.Has(name)
}

func (r *reader) float(name string, def float64) float64 {
	if !r.act.Allows(name) {
		r.miss(name)
		return def
	}
	v, ok := r.rec.Float(name)
	if !ok {
		r.miss(name)
		return def
	}
	return v
}

func (r *reader) int(name string, def int64) int64 {
	if !r.act.Allows(name) {
		r.miss(name)
		return def
	}
	v, ok := r.rec.Int(name)
	if !ok {
		r.miss(name)
		return def
	}
	return v
}

func (r *reader) flag(name string) bool {
	if !r.act.Allows(name) {
		r.miss(name)
		return false
	}
	v, ok := r.rec.Bool(name)
	if !ok {
		r.miss(name)
		return false
	}
	return v
}

func (r *reader) floats(name string) []float64 {
	if !r.act.Allows(name) {
		r.miss(name)
		return nil
	}
	v, ok := r.rec.Floats(name)
	if !ok {
		r.miss(name)
		return nil
	}
	return v
}

func (r *reader) ints(name string) ([]int64, bool) {
	if !r.act.Allows(name) {
		r.miss(name)
		return nil, false
	}
	v, ok := r.rec.Ints(name)
	if !ok {
		r.miss(name)
		return nil, false
	}
	return v, true
}

func (r *reader) bools(name string) []bool {
	if !r.act.Allows(name) {
		r.miss(name)
		return nil
	}
	v, ok := r.rec.Bools(name)
	if !ok {
		r.miss(name)
		return nil
	}
	return v
}
