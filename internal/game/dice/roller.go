package dice

import "fmt"

// Roll evaluates expr using src. A zero-count expression rolls nothing and
// totals its modifier.
//
// Postcondition: len(result.Dice) == expr.Count and
// result.Total() == sum(result.Dice) + expr.Modifier, or an error for an
// expression Parse would have rejected.
func Roll(expr Expression, src Source) (RollResult, error) {
	if src == nil {
		return RollResult{}, fmt.Errorf("dice: nil source rolling %q", expr.Raw)
	}
	if expr.Count < 0 || (expr.Count > 0 && expr.Sides < 2) {
		return RollResult{}, fmt.Errorf("dice: malformed expression %q (%dd%d)", expr.Raw, expr.Count, expr.Sides)
	}
	res := RollResult{Expression: expr.Raw, Modifier: expr.Modifier}
	if expr.Count > 0 {
		res.Dice = make([]int, expr.Count)
		for i := range res.Dice {
			res.Dice[i] = src.Intn(expr.Sides) + 1
		}
	}
	return res, nil
}

// RollExpr parses and rolls expr in one call.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src)
}
