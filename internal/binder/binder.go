// Package binder maps caller-supplied dataset ids to stable relation names
// scoped to one query execution, and rewrites the caller's SQL to use them.
package binder

import (
	"fmt"
	"strings"
	"unicode"
)

// Binding pairs a dataset id with the relation name bound to it for one
// execution.
type Binding struct {
	DatasetID string
	Relation  string
}

// Bind assigns positional relation names (dataset_1, dataset_2, …) in
// submission order. Positional names keep the mapping predictable for
// callers writing query text against multiple datasets.
func Bind(datasetIDs []string) []Binding {
	bindings := make([]Binding, len(datasetIDs))
	for i, id := range datasetIDs {
		bindings[i] = Binding{
			DatasetID: id,
			Relation:  fmt.Sprintf("dataset_%d", i+1),
		}
	}
	return bindings
}

// Rewrite replaces every occurrence of a bound dataset id in the SQL text
// with its relation name. Replacement happens on whole tokens only — a
// dataset id that is a substring of a longer identifier, or appears inside
// a string literal, is left alone. Ids wrapped in double quotes are
// rewritten including the quotes, since the relation names need none.
func Rewrite(sqlText string, bindings []Binding) string {
	if len(bindings) == 0 {
		return sqlText
	}

	byID := make(map[string]string, len(bindings))
	for _, b := range bindings {
		byID[b.DatasetID] = b.Relation
	}

	var out strings.Builder
	out.Grow(len(sqlText))

	runes := []rune(sqlText)
	for i := 0; i < len(runes); {
		r := runes[i]

		// String literals pass through untouched.
		if r == '\'' {
			j := i + 1
			for j < len(runes) {
				if runes[j] == '\'' {
					j++
					if j < len(runes) && runes[j] == '\'' { // escaped quote
						j++
						continue
					}
					break
				}
				j++
			}
			out.WriteString(string(runes[i:j]))
			i = j
			continue
		}

		// Quoted identifier: rewrite the whole thing when the inner text is
		// a bound id, otherwise pass through.
		if r == '"' {
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			if j < len(runes) {
				inner := string(runes[i+1 : j])
				if rel, ok := byID[inner]; ok {
					out.WriteString(rel)
				} else {
					out.WriteString(string(runes[i : j+1]))
				}
				i = j + 1
				continue
			}
			// Unterminated quote — emit the rest verbatim.
			out.WriteString(string(runes[i:]))
			break
		}

		if isTokenRune(r) {
			j := i
			for j < len(runes) && isTokenRune(runes[j]) {
				j++
			}
			token := string(runes[i:j])
			if rel, ok := byID[token]; ok {
				out.WriteString(rel)
			} else {
				out.WriteString(token)
			}
			i = j
			continue
		}

		out.WriteRune(r)
		i++
	}

	return out.String()
}

// EnsureLimit appends a LIMIT clause when rowCap is positive and the query has
// no limit token of its own. The check is a case-insensitive token scan, so
// "LIMIT" inside an identifier or string does not count.
func EnsureLimit(sqlText string, rowCap int) string {
	if rowCap <= 0 || hasLimitToken(sqlText) {
		return sqlText
	}
	trimmed := strings.TrimRight(strings.TrimSpace(sqlText), ";")
	return fmt.Sprintf("%s LIMIT %d", trimmed, rowCap)
}

func hasLimitToken(sqlText string) bool {
	for _, tok := range tokenize(sqlText) {
		if strings.EqualFold(tok, "limit") {
			return true
		}
	}
	return false
}

// tokenize splits SQL text into identifier-like tokens, skipping string
// literals and quoted identifiers.
func tokenize(sqlText string) []string {
	var tokens []string
	runes := []rune(sqlText)
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == '\'' || r == '"' {
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			i = j + 1
			continue
		}
		if isTokenRune(r) {
			j := i
			for j < len(runes) && isTokenRune(runes[j]) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
			continue
		}
		i++
	}
	return tokens
}

// isTokenRune reports whether r can appear in a dataset id or identifier
// token. Hyphens are included because dataset ids are UUIDs.
func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
