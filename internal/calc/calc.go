// Package calc implements the arithmetic core of the calculator tool.
package calc

import (
	apperrors "taskninja/internal/errors"
)

// Operator is one of the four supported arithmetic operations.
type Operator string

const (
	Add      Operator = "+"
	Subtract Operator = "-"
	Multiply Operator = "*"
	Divide   Operator = "/"
)

// Operators lists the supported operators in menu order.
var Operators = []Operator{Add, Subtract, Multiply, Divide}

// ParseOperator validates a user-entered operator.
func ParseOperator(s string) (Operator, error) {
	switch Operator(s) {
	case Add, Subtract, Multiply, Divide:
		return Operator(s), nil
	}
	return "", apperrors.InvalidInput("invalid operator, choose from +, -, *, /")
}

// Calculate applies the operator to the operands. Division by zero returns
// an INVALID_INPUT error rather than a crash or an infinity.
func Calculate(op Operator, x, y float64) (float64, error) {
	switch op {
	case Add:
		return x + y, nil
	case Subtract:
		return x - y, nil
	case Multiply:
		return x * y, nil
	case Divide:
		if y == 0 {
			return 0, apperrors.InvalidInput("division by zero")
		}
		return x / y, nil
	}
	return 0, apperrors.InvalidInput("invalid operator")
}
