package search

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern admits the column names builders are allowed to emit.
// Anything else is rejected before it can reach SQL text.
var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// PgCompiler renders a predicate tree into a parameterized WHERE fragment.
// Every value travels as a positional argument; only validated identifiers
// are interpolated.
type PgCompiler struct {
	args []any
}

// CompileWhere renders the predicate into SQL starting at placeholder $1.
func CompileWhere(p Predicate) (string, []any, error) {
	c := &PgCompiler{}
	clause, err := c.compile(p)
	if err != nil {
		return "", nil, err
	}
	return clause, c.args, nil
}

func (c *PgCompiler) compile(p Predicate) (string, error) {
	switch pred := p.(type) {
	case FieldMatch:
		if err := checkIdentifier(pred.Field); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", pred.Field, c.bind(pred.Value)), nil

	case Regex:
		if err := checkIdentifier(pred.Field); err != nil {
			return "", err
		}
		op := "~"
		if pred.CaseInsensitive {
			op = "~*"
		}
		return fmt.Sprintf("%s %s %s", pred.Field, op, c.bind(pred.Pattern)), nil

	case GeoNear:
		if err := checkIdentifier(pred.Field); err != nil {
			return "", err
		}
		// earthdistance: distance in meters between the query point and the
		// stored coordinate pair.
		return fmt.Sprintf(
			"earth_distance(ll_to_earth(%s, %s), ll_to_earth(%s_lat, %s_lng)) <= %s",
			c.bind(pred.Lat), c.bind(pred.Lng), pred.Field, pred.Field, c.bind(pred.MaxDistance),
		), nil

	case Or:
		return c.compileBranches(pred.Preds, " OR ", "FALSE")

	case And:
		return c.compileBranches(pred.Preds, " AND ", "TRUE")

	case MatchNone:
		return "FALSE", nil

	default:
		return "", fmt.Errorf("unsupported predicate %T", p)
	}
}

func (c *PgCompiler) compileBranches(preds []Predicate, sep, empty string) (string, error) {
	if len(preds) == 0 {
		return empty, nil
	}
	clauses := make([]string, 0, len(preds))
	for _, branch := range preds {
		clause, err := c.compile(branch)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return "(" + strings.Join(clauses, sep) + ")", nil
}

func (c *PgCompiler) bind(value any) string {
	c.args = append(c.args, value)
	return fmt.Sprintf("$%d", len(c.args))
}

// CompileOrderBy renders a sort spec into an ORDER BY fragment, or an empty
// string for an empty spec.
func CompileOrderBy(spec []SortField) (string, error) {
	if len(spec) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(spec))
	for _, field := range spec {
		if err := checkIdentifier(field.Field); err != nil {
			return "", err
		}
		direction := "ASC"
		if field.Desc {
			direction = "DESC"
		}
		clauses = append(clauses, field.Field+" "+direction)
	}
	return "ORDER BY " + strings.Join(clauses, ", "), nil
}

func checkIdentifier(field string) error {
	if !identifierPattern.MatchString(field) {
		return fmt.Errorf("invalid field identifier %q", field)
	}
	return nil
}
