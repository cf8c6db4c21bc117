package dice

import (
	"slices"

	"go.uber.org/zap"
)

// AbilityRoll is the standard method for generating one ability score.
var AbilityRoll = MustParse("4d6kh3")

// StandardArray is the fixed alternative to rolling ability scores.
var StandardArray = []int{15, 14, 13, 12, 10, 8}

// Roll evaluates expr with src.
//
// Precondition: expr came from Parse; src must be non-nil.
// Postcondition: len(Rolled) == expr.Count; len(Kept) == expr.KeepHighest when it is
// set and expr.Count otherwise.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	kept := slices.Clone(rolled)
	if expr.KeepHighest > 0 {
		slices.SortFunc(kept, func(a, b int) int { return b - a })
		kept = kept[:expr.KeepHighest]
	}
	return RollResult{
		Expression: expr.Raw,
		Rolled:     rolled,
		Kept:       kept,
		Modifier:   expr.Modifier,
	}
}

// Roller rolls with a Source and logs every roll at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result.
func (r *Roller) Roll(expr Expression) RollResult {
	res := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("rolled", res.Rolled),
		zap.Ints("kept", res.Kept),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}

// RollExpr parses and rolls expr.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// AbilityScores rolls AbilityRoll six times, once per ability in declaration order.
//
// Postcondition: Every score is in [3, 18].
func (r *Roller) AbilityScores() []int {
	out := make([]int, 6)
	for i := range out {
		out[i] = r.Roll(AbilityRoll).Total()
	}
	return out
}
