package entities

import "golang.org/x/text/cases"

// Fold returns the Unicode case-folded form of s. Title and author-name
// matching compares folded values, since SQLite's LOWER only folds ASCII.
func Fold(s string) string {
	return cases.Fold().String(s)
}
