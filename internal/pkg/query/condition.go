package query

import (
	"fmt"
	"strings"
)

// Condition is one WHERE predicate. SQL receives the index of the first free
// parameter and returns the fragment plus the parameters it consumed, named
// @p<index>, @p<index+1> and so on.
type Condition interface {
	SQL(paramIndex int) (string, map[string]interface{})
}

// compareCondition compares a column against a bound value.
type compareCondition struct {
	field string
	op    string
	value interface{}
}

func (c *compareCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	return fmt.Sprintf("%s %s @%s", c.field, c.op, paramName), map[string]interface{}{
		paramName: c.value,
	}
}

// Eq generates "field = @pN".
func Eq(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "=", value: value}
}

// Ne generates "field != @pN".
func Ne(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "!=", value: value}
}

// Lt generates "field < @pN".
func Lt(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "<", value: value}
}

// Lte generates "field <= @pN".
func Lte(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "<=", value: value}
}

// Gt generates "field > @pN".
func Gt(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: ">", value: value}
}

// Gte generates "field >= @pN".
func Gte(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: ">=", value: value}
}

// columnCondition compares two columns of the same row. It binds no parameters.
type columnCondition struct {
	left  string
	op    string
	right string
}

func (c *columnCondition) SQL(int) (string, map[string]interface{}) {
	return fmt.Sprintf("%s %s %s", c.left, c.op, c.right), map[string]interface{}{}
}

// ColumnLte generates "left <= right", e.g. stock_quantity <= min_stock_level.
func ColumnLte(left, right string) Condition {
	return &columnCondition{left: left, op: "<=", right: right}
}

// inCondition matches a column against a list of values, one parameter each.
type inCondition struct {
	field  string
	values []interface{}
}

// In generates "field IN (@pN, @pN+1, ...)". An empty list matches nothing.
func In(field string, values ...interface{}) Condition {
	return &inCondition{field: field, values: values}
}

func (c *inCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	if len(c.values) == 0 {
		return "FALSE", map[string]interface{}{}
	}
	params := make(map[string]interface{}, len(c.values))
	names := make([]string, 0, len(c.values))
	for i, v := range c.values {
		name := fmt.Sprintf("p%d", paramIndex+i)
		params[name] = v
		names = append(names, "@"+name)
	}
	return fmt.Sprintf("%s IN (%s)", c.field, strings.Join(names, ", ")), params
}

// IsNull generates "field IS NULL".
func IsNull(field string) Condition {
	return &nullCondition{field: field}
}

// IsNotNull generates "field IS NOT NULL".
func IsNotNull(field string) Condition {
	return &nullCondition{field: field, not: true}
}

type nullCondition struct {
	field string
	not   bool
}

func (c *nullCondition) SQL(int) (string, map[string]interface{}) {
	if c.not {
		return c.field + " IS NOT NULL", map[string]interface{}{}
	}
	return c.field + " IS NULL", map[string]interface{}{}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsCondition matches rows where any of the columns contains value,
// ignoring case. Every column shares the one parameter.
type containsCondition struct {
	fields []string
	value  string
}

// ContainsFold generates "(LOWER(a) LIKE @pN OR LOWER(b) LIKE @pN)". The
// wildcards % and _ in value match literally. No columns matches nothing.
func ContainsFold(value string, fields ...string) Condition {
	return &containsCondition{fields: fields, value: value}
}

func (c *containsCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	if len(c.fields) == 0 {
		return "FALSE", map[string]interface{}{}
	}
	paramName := fmt.Sprintf("p%d", paramIndex)
	parts := make([]string, 0, len(c.fields))
	for _, f := range c.fields {
		parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE @%s", f, paramName))
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(c.value)) + "%"
	return "(" + strings.Join(parts, " OR ") + ")", map[string]interface{}{
		paramName: pattern,
	}
}
