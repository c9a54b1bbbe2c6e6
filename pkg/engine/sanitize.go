package engine

import (
	"strings"

	"github.com/oblabs/memlifecycle/pkg/errs"
)

// maxContentLength is the hard length cap spec.md §6 fixes.
const maxContentLength = 10000

// forbiddenPatterns is the injection pattern set spec.md §6 names, checked
// case-insensitively against normalized content.
var forbiddenPatterns = []string{
	"<script",
	"javascript:",
	"eval(",
	"union select",
	"drop table",
	"${",
	"#{",
}

// validateContent enforces spec.md §4.9 step 1 / §6: non-empty, length <=
// 10000, no forbidden pattern.
func validateContent(text string) error {
	if text == "" {
		return errs.New("engine.validateContent", errs.KindInvalidInput, errs.ErrInvalidInput)
	}
	if len(text) > maxContentLength {
		return errs.New("engine.validateContent", errs.KindInvalidInput, errs.ErrInvalidInput)
	}

	lowered := strings.ToLower(text)
	for _, pattern := range forbiddenPatterns {
		if strings.Contains(lowered, pattern) {
			return errs.New("engine.validateContent", errs.KindInvalidInput, errs.ErrInvalidInput)
		}
	}
	return nil
}

// normalizedHash produces a stable key for merge-idempotence detection
// (spec.md §8: "if M_new == M_old.content ... detected via normalized text
// hash before embedding"). Whitespace-collapsed, lowercased comparison is
// sufficient since the spec only requires exact-content idempotence, not
// fuzzy matching.
func normalizedHash(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	return strings.Join(fields, " ")
}
