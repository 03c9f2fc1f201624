package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// EvalCondition evaluates a guard expression against the state.
// Supported forms:
//   - "" (always true)
//   - "flag.<key>" (flag is truthy) and "!<expr>"
//   - "flag.<key> == '<value>'" and "flag.<key> != '<value>'"
//   - "has('<item>')" (item in inventory)
//   - "<puzzleID>.solved" (puzzle solved flag set)
//   - "<expr> && <expr>", "<expr> || <expr>" (&& binds tighter)
//
// Unknown forms evaluate to false.
func EvalCondition(expr string, s GameState) bool {
	expr = strings.TrimSpace(expr)

	if expr == "" {
		return true
	}

	if left, right, ok := splitOperator(expr, "||"); ok {
		return EvalCondition(left, s) || EvalCondition(right, s)
	}

	if left, right, ok := splitOperator(expr, "&&"); ok {
		return EvalCondition(left, s) && EvalCondition(right, s)
	}

	if strings.HasPrefix(expr, "!") && !strings.HasPrefix(expr, "!=") {
		return !EvalCondition(expr[1:], s)
	}

	// Pattern: has('<item>')
	if strings.HasPrefix(expr, "has(") && strings.HasSuffix(expr, ")") {
		item := unquote(strings.TrimSpace(expr[len("has(") : len(expr)-1]))
		return s.HasItem(item)
	}

	// Pattern: flag.<key> == '<value>' / flag.<key> != '<value>'
	for _, op := range []string{"!=", "=="} {
		if left, right, ok := splitOperator(expr, op); ok {
			key, ok := flagKey(left)
			if !ok {
				return false
			}
			v, present := s.Flags[key]
			equal := present && formatValue(v) == unquote(strings.TrimSpace(right))
			if op == "==" {
				return equal
			}
			return !equal
		}
	}

	// Pattern: <puzzleID>.solved
	if strings.HasSuffix(expr, ".solved") && !strings.HasPrefix(expr, "flag.") {
		return truthy(s.Flags[SolvedFlag(strings.TrimSuffix(expr, ".solved"))])
	}

	// Pattern: flag.<key>
	if key, ok := flagKey(expr); ok {
		return truthy(s.Flags[key])
	}

	return false
}

// CheckCondition reports whether expr only uses supported forms.
func CheckCondition(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	for _, sep := range []string{"||", "&&"} {
		if left, right, ok := splitOperator(expr, sep); ok {
			if err := CheckCondition(left); err != nil {
				return err
			}
			return CheckCondition(right)
		}
	}
	if strings.HasPrefix(expr, "!") && !strings.HasPrefix(expr, "!=") {
		return CheckCondition(expr[1:])
	}
	if strings.HasPrefix(expr, "has(") && strings.HasSuffix(expr, ")") {
		return nil
	}
	for _, op := range []string{"!=", "=="} {
		left, _, ok := splitOperator(expr, op)
		if !ok {
			continue
		}
		if _, ok := flagKey(left); !ok {
			return fmt.Errorf("unsupported comparison: %s", expr)
		}
		return nil
	}
	if strings.HasSuffix(expr, ".solved") {
		return nil
	}
	if _, ok := flagKey(expr); ok {
		return nil
	}
	return fmt.Errorf("unsupported condition: %s", expr)
}

// splitOperator splits expr at the first op outside a quoted span.
func splitOperator(expr, op string) (string, string, bool) {
	var quote byte
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case strings.HasPrefix(expr[i:], op):
			return expr[:i], expr[i+len(op):], true
		}
	}
	return "", "", false
}

// SolvedFlag is the flag key a solved puzzle sets.
func SolvedFlag(puzzleID string) string {
	return puzzleID + ".solved"
}

func flagKey(expr string) (string, bool) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "flag.") {
		return "", false
	}
	key := strings.TrimPrefix(expr, "flag.")
	if key == "" || strings.ContainsAny(key, " '\"()") {
		return "", false
	}
	return key, true
}

// unquote strips one pair of single or double quotes.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Effect operations.
const (
	OpSetFlag    = "set_flag"
	OpUnsetFlag  = "unset_flag"
	OpAddItem    = "add_item"
	OpRemoveItem = "remove_item"
	OpIncr       = "incr"
)

// EffectOp is one serializable state change applied when a choice is taken.
type EffectOp struct {
	Op    string `json:"op" yaml:"op"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
	Item  string `json:"item,omitempty" yaml:"item,omitempty"`
}

// Check reports whether the op is known and carries the fields it needs.
func (op EffectOp) Check() error {
	switch op.Op {
	case OpSetFlag, OpUnsetFlag, OpIncr:
		if op.Key == "" {
			return fmt.Errorf("%s: key is required", op.Op)
		}
	case OpAddItem, OpRemoveItem:
		if op.Item == "" {
			return fmt.Errorf("%s: item is required", op.Op)
		}
	default:
		return fmt.Errorf("unknown effect op: %q", op.Op)
	}
	return nil
}

// ApplyEffects applies ops in order to a copy of s. Unknown ops are skipped.
func ApplyEffects(ops []EffectOp, s GameState) GameState {
	next := s.Clone()
	for _, op := range ops {
		switch op.Op {
		case OpSetFlag:
			next.Flags[op.Key] = op.Value
		case OpUnsetFlag:
			delete(next.Flags, op.Key)
		case OpAddItem:
			if !next.HasItem(op.Item) {
				next.Inventory = append(next.Inventory, op.Item)
			}
		case OpRemoveItem:
			for i, it := range next.Inventory {
				if it == op.Item {
					next.Inventory = append(next.Inventory[:i:i], next.Inventory[i+1:]...)
					break
				}
			}
		case OpIncr:
			step := 1.0
			if op.Value != nil {
				step = toFloat(op.Value)
			}
			next.Flags[op.Key] = toFloat(next.Flags[op.Key]) + step
		}
	}
	return next
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	default:
		return 0
	}
}
