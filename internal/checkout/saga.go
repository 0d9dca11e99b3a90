package checkout

import (
	"context"
	"time"

	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/metrics"
)

// sagaStep is one forward action and the action that undoes it. Compensate
// may be nil for steps with nothing to undo.
type sagaStep struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

type saga struct {
	path    string
	steps   []sagaStep
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
	budget  time.Duration
}

func newSaga(path string, logg *logger.Logger, m *metrics.CheckoutMetrics, budget time.Duration) *saga {
	if logg == nil {
		logg = logger.Nop()
	}
	return &saga{path: path, logg: logg, metrics: m, budget: budget}
}

func (s *saga) add(step sagaStep) *saga {
	s.steps = append(s.steps, step)
	return s
}

// run executes steps in order. When a step fails, the compensations of the
// completed steps run in reverse order and the step error is returned with
// its name in details.step.
func (s *saga) run(ctx context.Context) error {
	completed := make([]sagaStep, 0, len(s.steps))
	for _, step := range s.steps {
		stepCtx := s.logg.WithStep(ctx, step.Name)
		if err := step.Run(stepCtx); err != nil {
			s.logg.Error(stepCtx, "checkout step failed", err)
			s.metrics.IncStepFailure(s.path, step.Name)
			if compErr := s.compensate(ctx, completed); compErr != nil {
				s.logg.Error(stepCtx, "checkout compensation incomplete", compErr)
			}
			return stepError(step.Name, err)
		}
		completed = append(completed, step)
	}
	return nil
}

// compensate ignores cancellation of the request so cleanup still reaches
// external systems, bounded by the compensation budget.
func (s *saga) compensate(ctx context.Context, completed []sagaStep) error {
	cctx := context.WithoutCancel(ctx)
	if s.budget > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(cctx, s.budget)
		defer cancel()
	}

	var combined error
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		stepCtx := s.logg.WithStep(cctx, step.Name)
		err := step.Compensate(stepCtx)
		s.metrics.IncCompensation(step.Name, err == nil)
		if err != nil {
			s.logg.Error(stepCtx, "compensation failed", err)
			combined = multierr.Append(combined, err)
			continue
		}
		s.logg.Warn(stepCtx, "compensated")
	}
	return combined
}

func stepError(step string, err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.WithDetail("step", step)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout failed").WithDetail("step", step)
}
