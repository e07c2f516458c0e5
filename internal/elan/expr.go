package elan

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// exprBlacklist are substrings that must never reach the expression
// evaluator. The check runs after substitution, so a variable cannot
// smuggle them in either.
var exprBlacklist = []string{";", "\n", "__", "lambda", "exec", "import"}

var quotedNumber = regexp.MustCompile(`"(-?\d+(?:\.\d*)?)"`)

// exprFunctions is the arithmetic function set available inside expr.
var exprFunctions = map[string]govaluate.ExpressionFunction{
	"sqrt":   exprFunc1(math.Sqrt),
	"sin":    exprFunc1(math.Sin),
	"cos":    exprFunc1(math.Cos),
	"abs":    exprFunc1(math.Abs),
	"ceil":   exprFunc1(math.Ceil),
	"floor":  exprFunc1(math.Floor),
	"round":  exprFunc1(math.Round),
	"double": exprFunc1(func(x float64) float64 { return x }),
	"int":    exprFunc1(math.Trunc),
	"hypot": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("hypot wants two arguments")
		}
		x, err := exprNumber(args[0])
		if err != nil {
			return nil, err
		}
		y, err := exprNumber(args[1])
		if err != nil {
			return nil, err
		}
		return math.Hypot(x, y), nil
	},
}

func exprFunc1(f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("want one argument, got %d", len(args))
		}
		x, err := exprNumber(args[0])
		if err != nil {
			return nil, err
		}
		return f(x), nil
	}
}

func exprNumber(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%v is not a number", v)
	}
}

func (it *Interp) cmdExpr(si int, args []string) (result, error) {
	v, err := it.exprEval(si, args)
	if err != nil {
		return result{}, err
	}
	return result{val: v}, nil
}

// exprEval substitutes and evaluates an arithmetic expression. Substituted
// values that are not numbers become quoted string literals; quoted
// literals that are plain numbers are unwrapped again so comparisons like
// $ch == "4" stay numeric.
func (it *Interp) exprEval(si int, args []string) (string, error) {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return "0", nil
	}
	text, err := it.substituteCommands(si, text)
	if err != nil {
		return "", err
	}
	text, err = it.substituteVariables(si, text, true)
	if err != nil {
		return "", err
	}
	text, err = substituteBackslashes(text)
	if err != nil {
		return "", err
	}
	for _, bad := range exprBlacklist {
		if strings.Contains(text, bad) {
			return "", fmt.Errorf("expression contains forbidden %q", bad)
		}
	}
	text = quotedNumber.ReplaceAllString(text, "$1")

	expr, err := govaluate.NewEvaluableExpressionWithFunctions(text, exprFunctions)
	if err != nil {
		return "", fmt.Errorf("bad expression %q: %w", text, err)
	}
	res, err := expr.Evaluate(nil)
	if err != nil {
		return "", fmt.Errorf("evaluating %q: %w", text, err)
	}
	return formatExprResult(res), nil
}

// formatExprResult renders an evaluator result the way scripts expect:
// booleans as 1 or 0, whole floats without a fraction.
func formatExprResult(v interface{}) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "1"
		}
		return "0"
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(v)
	}
}
