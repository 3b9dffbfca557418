package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every random decision made during
// resolution is auditable at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source exposes the underlying randomness.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates expr and logs the result.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) (RollResult, error) {
	result, err := Roll(expr, r.src)
	if err != nil {
		return RollResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}

// RollExpr parses expr and rolls it, logging the result.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e)
}

// Check rolls a probability check labelled for the debug log.
func (r *Roller) Check(label string, p float64) bool {
	ok := Chance(r.src, p)
	r.logger.Debug("chance roll",
		zap.String("check", label),
		zap.Float64("probability", p),
		zap.Bool("success", ok),
	)
	return ok
}

// Pick returns a uniform index in [0, n), or -1 when n <= 0.
func (r *Roller) Pick(label string, n int) int {
	if n <= 0 {
		return -1
	}
	i := r.src.Intn(n)
	r.logger.Debug("pick", zap.String("check", label), zap.Int("of", n), zap.Int("index", i))
	return i
}
