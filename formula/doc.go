// Package formula implements a spreadsheet formula engine: a tokenizer
// and precedence-climbing parser for the formula grammar, an evaluator
// with a registry of built-in functions, and a dependency-tracking result
// cache with cascade invalidation and batch recalculation.
//
// Cell references use A1 notation with 0-based internal coordinates
// (column A, row 1 is col 0, row 0). Formulas may carry a leading '='.
//
//	e := formula.New()
//	sheet := formula.NewMapSheet()
//	_ = sheet.Set("A1", formula.Number(10))
//	_ = sheet.SetFormula("A2", "=A1*2")
//	v, err := e.Evaluate("A2", "=A1*2", sheet)
//
// Evaluation of a formula cell pulls its referenced cells recursively, so
// chains of formulas resolve without an explicit recalculation pass.
// Callers that manage recalculation themselves use the push-side API:
// Dependents, InvalidateCascade, and BatchRecalculate.
package formula
