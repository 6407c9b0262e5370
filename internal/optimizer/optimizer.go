package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain/srs"
)

// Config tunes the descent loop. Zero values take the documented defaults.
type Config struct {
	// Parameters are the scheduling knobs the candidate weights are
	// evaluated under. The zero value means stock parameters. The weights
	// inside double as the descent starting point.
	Parameters srs.Parameters `json:"parameters"`

	// LearningRate is the initial step size; it halves whenever a step
	// raises the loss. Default 0.05.
	LearningRate float64 `json:"learning_rate"`

	// MaxIterations bounds the descent loop. Default 200.
	MaxIterations int `json:"max_iterations"`

	// ConvergenceThreshold stops the loop once |Δloss| between iterations
	// falls below it. Default 1e-5.
	ConvergenceThreshold float64 `json:"convergence_threshold"`

	// Epsilon is the finite-difference step. Default 1e-4.
	Epsilon float64 `json:"epsilon"`

	// L2Lambda scales the weight regularization term. Default 1e-5.
	L2Lambda float64 `json:"l2_lambda"`

	// MinReviews is the smallest history worth optimizing at all.
	// Default 50.
	MinReviews int `json:"min_reviews"`

	// MinMatureReviews is the smallest number of qualifying day-scale
	// observations worth fitting. Default 25.
	MinMatureReviews int `json:"min_mature_reviews"`
}

func (c Config) withDefaults() Config {
	c.Parameters = c.Parameters.WithDefaults()
	if c.LearningRate == 0 {
		c.LearningRate = 0.05
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 200
	}
	if c.ConvergenceThreshold == 0 {
		c.ConvergenceThreshold = 1e-5
	}
	if c.Epsilon == 0 {
		c.Epsilon = 1e-4
	}
	if c.L2Lambda == 0 {
		c.L2Lambda = 1e-5
	}
	if c.MinReviews == 0 {
		c.MinReviews = 50
	}
	if c.MinMatureReviews == 0 {
		c.MinMatureReviews = 25
	}
	return c
}

// Result is the outcome of one optimization run. When the history was too
// small to fit, Weights carries the starting vector, Iterations is zero and
// SampleSize reports the shortfall; the metric fields are left zero.
type Result struct {
	Weights    srs.Weights `json:"weights"`
	Loss       float64     `json:"loss"`
	RMSE       float64     `json:"rmse"`
	LogLoss    float64     `json:"log_loss"`
	SampleSize int         `json:"sample_size"`
	Iterations int         `json:"iterations"`
	Trace      []float64   `json:"trace,omitempty"`
}

// Metrics reports how well a weight vector predicts a review history.
type Metrics struct {
	LogLoss    float64 `json:"log_loss"`
	RMSE       float64 `json:"rmse"`
	SampleSize int     `json:"sample_size"`
}

// Optimizer fits personalized scheduler weights to a review history by
// gradient descent on the cross-entropy between predicted retrievability and
// observed outcomes. It owns no shared state; one value may serve many runs.
type Optimizer struct {
	config Config
}

// New builds an Optimizer, filling zero-valued config fields with defaults.
func New(config Config) *Optimizer {
	return &Optimizer{config: config.withDefaults()}
}

// Config returns the effective configuration.
func (o *Optimizer) Config() Config {
	return o.config
}

// Optimize fits weights to the given review history. Sparse histories are
// not an error: below the configured minimums the starting weights come back
// with Iterations == 0 and SampleSize reporting what was found. The context
// is checked between iterations; on cancellation the best weights so far are
// returned alongside the context error.
func (o *Optimizer) Optimize(ctx context.Context, logs []domain.ReviewLog) (Result, error) {
	if err := o.config.Parameters.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid optimizer parameters: %w", err)
	}

	start := o.config.Parameters.Weights
	if len(logs) < o.config.MinReviews {
		return Result{Weights: start, SampleSize: len(logs)}, nil
	}

	data := buildDataset(logs)
	mature := data.matureReviews()
	if mature < o.config.MinMatureReviews {
		return Result{Weights: start, SampleSize: mature}, nil
	}

	shortTerm := o.config.Parameters.EnableShortTerm
	weights := start
	eval := evaluate(srs.NewAlgorithm(weights), shortTerm, data)
	loss := lossValue(eval, weights, o.config.L2Lambda)

	trace := make([]float64, 0, o.config.MaxIterations+1)
	trace = append(trace, loss)

	lr := o.config.LearningRate
	iterations := 0

	result := func() Result {
		return Result{
			Weights:    weights,
			Loss:       loss,
			RMSE:       eval.rmse,
			LogLoss:    eval.logLoss,
			SampleSize: eval.samples,
			Iterations: iterations,
			Trace:      trace,
		}
	}

	for iter := 0; iter < o.config.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return result(), err
		}

		grad := o.gradient(weights, loss, shortTerm, data)

		updated := weights
		for i := range updated {
			updated[i] -= lr * grad[i]
		}
		updated = updated.Clamp()

		nextEval := evaluate(srs.NewAlgorithm(updated), shortTerm, data)
		nextLoss := lossValue(nextEval, updated, o.config.L2Lambda)

		// Worse steps are kept; only the rate shrinks.
		if nextLoss > loss {
			lr /= 2
		}

		delta := math.Abs(nextLoss - loss)
		weights, eval, loss = updated, nextEval, nextLoss
		iterations = iter + 1
		trace = append(trace, loss)

		if delta < o.config.ConvergenceThreshold {
			break
		}
	}

	return result(), nil
}

// Evaluate scores an arbitrary weight vector against a review history using
// the same preprocessing as Optimize. Useful for before/after comparisons.
func (o *Optimizer) Evaluate(weights srs.Weights, logs []domain.ReviewLog) Metrics {
	data := buildDataset(logs)
	eval := evaluate(srs.NewAlgorithm(weights), o.config.Parameters.EnableShortTerm, data)
	return Metrics{
		LogLoss:    eval.logLoss,
		RMSE:       eval.rmse,
		SampleSize: eval.samples,
	}
}

// gradient estimates ∂loss/∂w by forward finite differences. The short-term
// weights are pinned when that feature is off, since the loss cannot see
// them.
func (o *Optimizer) gradient(weights srs.Weights, baseLoss float64, shortTerm bool, data *dataset) srs.Weights {
	var grad srs.Weights
	for i := range weights {
		if !shortTerm && (i == 17 || i == 18) {
			continue
		}
		perturbed := weights
		perturbed[i] += o.config.Epsilon

		eval := evaluate(srs.NewAlgorithm(perturbed), shortTerm, data)
		grad[i] = (lossValue(eval, perturbed, o.config.L2Lambda) - baseLoss) / o.config.Epsilon
	}
	return grad
}
