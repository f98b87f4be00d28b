// Package cmd implements the cellform subcommands: eval for one-shot
// formula evaluation, calc for whole-sheet recalculation, and init for
// writing a starter sheet.
package cmd
