package decorate

import (
	"github.com/okian/minintup/internal/domain/serialize"
	"github.com/okian/minintup/internal/domain/tagprobe"
	"github.com/okian/minintup/internal/domain/tightness"
	"github.com/okian/minintup/internal/domain/trigger"
	"github.com/okian/minintup/internal/domain/weights"
	"github.com/okian/minintup/pkg/logger"
)

// Option configures a Decorator.
type Option func(*Decorator)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Decorator) {
		if l != nil {
			d.log = l
		}
	}
}

// WithActivation restricts the readable input fields.
func WithActivation(a Activation) Option {
	return func(d *Decorator) {
		d.activation = a
	}
}

// WithMatcher sets the trigger chain table.
func WithMatcher(m *trigger.Matcher) Option {
	return func(d *Decorator) {
		if m != nil {
			d.matcher = m
		}
	}
}

// WithClassifier sets the tight definitions.
func WithClassifier(c *tightness.Classifier) Option {
	return func(d *Decorator) {
		if c != nil {
			d.classifier = c
		}
	}
}

// WithAssigner sets the tag-and-probe assigner.
func WithAssigner(a *tagprobe.Assigner) Option {
	return func(d *Decorator) {
		if a != nil {
			d.assigner = a
		}
	}
}

// WithComposer sets the weight composer.
func WithComposer(c *weights.Composer) Option {
	return func(d *Decorator) {
		if c != nil {
			d.composer = c
		}
	}
}

// WithSerializer sets the output serializer.
func WithSerializer(s *serialize.Serializer) Option {
	return func(d *Decorator) {
		if s != nil {
			d.serializer = s
		}
	}
}

// WithRunState sets the run-wide counters.
func WithRunState(rs *weights.RunState) Option {
	return func(d *Decorator) {
		if rs != nil {
			d.run = rs
		}
	}
}

// WithBJetCut sets the b-tag discriminant threshold.
func WithBJetCut(cut float64) Option {
	return func(d *Decorator) {
		d.bjetCut = cut
	}
}

// WithTruthJetMatchDR sets the truth jet matching cone.
func WithTruthJetMatchDR(dr float64) Option {
	return func(d *Decorator) {
		if dr > 0 {
			d.truthJetMatchDR = dr
		}
	}
}
