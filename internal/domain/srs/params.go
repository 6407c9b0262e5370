package srs

import (
	"errors"
	"fmt"
)

// NumWeights is the number of model weights the scheduler consumes.
const NumWeights = 19

// Weights holds the model weights w0..w18. The first four are the initial
// stabilities for Again/Hard/Good/Easy; the remainder parameterize the
// difficulty and stability update formulas.
type Weights [NumWeights]float64

// DefaultWeights returns the weight vector used before any optimization has
// been run for a learner.
func DefaultWeights() Weights {
	return Weights{
		0.40255, 1.18385, 3.173, 15.69105,
		7.1949, 0.5345, 1.4604, 0.0046,
		1.54575, 0.1192, 1.01925, 1.9395,
		0.11, 0.29605, 2.2698, 0.2315,
		2.9898, 0.51655, 0.6621,
	}
}

// LowerBounds returns the per-weight lower bounds enforced after each
// optimizer update and checked by Parameters.Validate.
func LowerBounds() Weights {
	return Weights{
		0.001, 0.001, 0.001, 0.001,
		1.0, 0.001, 0.001, 0.001,
		0.0, 0.0, 0.001, 0.001,
		0.001, 0.001, 0.0, 0.0,
		1.0, 0.0, 0.0,
	}
}

// UpperBounds returns the per-weight upper bounds.
func UpperBounds() Weights {
	return Weights{
		100.0, 100.0, 100.0, 100.0,
		10.0, 4.0, 4.0, 0.75,
		4.0, 0.8, 3.5, 5.0,
		0.25, 0.9, 4.0, 1.0,
		6.0, 2.0, 2.0,
	}
}

// Clamp returns a copy of w with every weight forced into [lower, upper].
func (w Weights) Clamp() Weights {
	lo, hi := LowerBounds(), UpperBounds()
	for i := range w {
		if w[i] < lo[i] {
			w[i] = lo[i]
		}
		if w[i] > hi[i] {
			w[i] = hi[i]
		}
	}
	return w
}

// Validate checks every weight against its bounds.
func (w Weights) Validate() error {
	lo, hi := LowerBounds(), UpperBounds()
	for i := range w {
		if w[i] < lo[i] || w[i] > hi[i] {
			return fmt.Errorf("%w: w%d=%v outside [%v, %v]", ErrWeightOutOfBounds, i, w[i], lo[i], hi[i])
		}
	}
	return nil
}

// Validation errors returned by Parameters.Validate.
var (
	ErrWeightOutOfBounds   = errors.New("weight out of bounds")
	ErrInvalidRetention    = errors.New("request retention must be in (0, 1)")
	ErrInvalidMaxInterval  = errors.New("maximum interval must be at least 1 day")
	ErrInvalidLearningStep = errors.New("learning steps must be positive minutes")
	ErrInvalidFuzzFactor   = errors.New("fuzz factor must be in [0, 1)")
	ErrInvalidGraduation   = errors.New("graduating and easy intervals must be at least 1 day")
)

const (
	defaultRequestRetention   = 0.9
	defaultMaximumInterval    = 36500
	defaultGraduatingInterval = 1
	defaultEasyInterval       = 4
	defaultFuzzFactor         = 0.05

	// decay is the fixed exponent of the power forgetting curve.
	decay = -0.5
)

// Parameters configures a Scheduler. The zero value is not usable directly;
// construct with DefaultParameters or pass the struct through NewScheduler,
// which fills zero-valued fields with defaults before validating.
type Parameters struct {
	// Weights are the model weights w0..w18.
	Weights Weights `json:"weights"`

	// RequestRetention is the target probability of recall at the moment a
	// review card falls due. Higher values produce shorter intervals.
	RequestRetention float64 `json:"request_retention"`

	// MaximumInterval caps every scheduled interval, in days.
	MaximumInterval int `json:"maximum_interval"`

	// LearningSteps are the intra-day steps, in minutes, a new card climbs
	// before graduating to review. A nil slice means "use the defaults";
	// an allocated empty slice disables the ladder.
	LearningSteps []int `json:"learning_steps"`

	// RelearningSteps are the minutes-scale steps a lapsed card climbs
	// before returning to review. Nil means defaults, empty disables.
	RelearningSteps []int `json:"relearning_steps"`

	// GraduatingInterval is the first review interval, in days, granted on
	// graduation with Good.
	GraduatingInterval int `json:"graduating_interval"`

	// EasyInterval is the review interval, in days, granted when Easy
	// rates a card straight out of the learning ladder.
	EasyInterval int `json:"easy_interval"`

	// FuzzFactor bounds the symmetric jitter applied to day-scale
	// intervals, as a fraction of the interval.
	FuzzFactor float64 `json:"fuzz_factor"`

	// DisableFuzz turns interval jitter off entirely.
	DisableFuzz bool `json:"disable_fuzz"`

	// EnableShortTerm applies the same-day stability formula to reviews
	// that arrive less than one day after the previous one. When false,
	// same-day reviews go through the standard update with the fractional
	// elapsed time.
	EnableShortTerm bool `json:"enable_short_term"`
}

// DefaultParameters returns the stock configuration: default weights, 90%
// target retention, a 100-year interval cap, 1m/10m learning steps and a 10m
// relearning step.
func DefaultParameters() Parameters {
	return Parameters{
		Weights:            DefaultWeights(),
		RequestRetention:   defaultRequestRetention,
		MaximumInterval:    defaultMaximumInterval,
		LearningSteps:      []int{1, 10},
		RelearningSteps:    []int{10},
		GraduatingInterval: defaultGraduatingInterval,
		EasyInterval:       defaultEasyInterval,
		FuzzFactor:         defaultFuzzFactor,
	}
}

// WithWeights returns a copy of p carrying w.
func (p Parameters) WithWeights(w Weights) Parameters {
	p.Weights = w
	return p
}

// WithDefaults returns a copy of p with zero-valued fields replaced by
// defaults, so that Parameters{} behaves like DefaultParameters. Nil step
// slices get the default ladders; allocated empty slices are preserved as
// "no steps".
func (p Parameters) WithDefaults() Parameters {
	var zero Weights
	if p.Weights == zero {
		p.Weights = DefaultWeights()
	}
	if p.RequestRetention == 0 {
		p.RequestRetention = defaultRequestRetention
	}
	if p.MaximumInterval == 0 {
		p.MaximumInterval = defaultMaximumInterval
	}
	if p.LearningSteps == nil {
		p.LearningSteps = []int{1, 10}
	}
	if p.RelearningSteps == nil {
		p.RelearningSteps = []int{10}
	}
	if p.GraduatingInterval == 0 {
		p.GraduatingInterval = defaultGraduatingInterval
	}
	if p.EasyInterval == 0 {
		p.EasyInterval = defaultEasyInterval
	}
	if p.FuzzFactor == 0 {
		p.FuzzFactor = defaultFuzzFactor
	}
	return p
}

// Validate reports the first configuration problem found.
func (p Parameters) Validate() error {
	if err := p.Weights.Validate(); err != nil {
		return err
	}
	if p.RequestRetention <= 0 || p.RequestRetention >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidRetention, p.RequestRetention)
	}
	if p.MaximumInterval < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxInterval, p.MaximumInterval)
	}
	for _, step := range p.LearningSteps {
		if step <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidLearningStep, step)
		}
	}
	for _, step := range p.RelearningSteps {
		if step <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidLearningStep, step)
		}
	}
	if p.GraduatingInterval < 1 || p.EasyInterval < 1 {
		return fmt.Errorf("%w: graduating=%d easy=%d", ErrInvalidGraduation, p.GraduatingInterval, p.EasyInterval)
	}
	if p.FuzzFactor < 0 || p.FuzzFactor >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidFuzzFactor, p.FuzzFactor)
	}
	return nil
}
