// Package guardrail implements the validation gates on the query pipeline's
// input and output. Validators flag or reject a payload but never transform
// it, and they never fail: every call returns a verdict and a reason.
package guardrail

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ragpipe/internal/domain"
)

// Validator checks query and response well-formedness. It is stateless per
// call; the length bounds come from configuration at construction time.
type Validator struct {
	MinQueryLength int
	MaxQueryLength int
}

// ValidateQuery runs the query checks in order, short-circuiting on the
// first failure: non-empty, minimum length, maximum length, not purely
// numeric after trimming. Length bounds count characters, not bytes.
func (v Validator) ValidateQuery(query string) (bool, string) {
	if query == "" {
		return false, "Query cannot be empty."
	}
	length := utf8.RuneCountInString(query)
	if length < v.MinQueryLength {
		return false, fmt.Sprintf("Query must be at more than %d characters long.", v.MinQueryLength)
	}
	if length > v.MaxQueryLength {
		return false, fmt.Sprintf("Query exceeds maximum length of %d characters.", v.MaxQueryLength)
	}
	if isNumeric(strings.TrimSpace(query)) {
		return false, "Query must contain more than just alphanumeric characters."
	}
	return true, "Query is valid."
}

// ValidateResponse runs the response checks in order: non-empty answer,
// non-empty sources, and the answer not admitting it found nothing.
func (v Validator) ValidateResponse(result domain.QueryResult) (bool, string) {
	if result.Answer == "" {
		return false, "Empty answer returned."
	}
	if len(result.Sources) == 0 {
		return false, "No sources returned."
	}
	if strings.Contains(strings.ToLower(result.Answer), "i don't know") {
		return false, "LLM could not find answer in context."
	}
	return true, "Response is valid."
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
