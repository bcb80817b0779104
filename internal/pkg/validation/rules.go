package validation

import (
	"regexp"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`

	// Batch pattern, e.g. "2023-2027"
	BatchPattern = `^\d{4}-\d{4}$`

	// Roll number pattern - alphanumeric, 1 to 20 characters
	RollNumberPattern = `^[A-Za-z0-9\-]{1,20}$`

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email      *regexp.Regexp
	Batch      *regexp.Regexp
	RollNumber *regexp.Regexp
}{
	Email:      regexp.MustCompile(EmailPattern),
	Batch:      regexp.MustCompile(BatchPattern),
	RollNumber: regexp.MustCompile(RollNumberPattern),
}

// IsValidEmail reports whether the value looks like an email address
func IsValidEmail(value string) bool {
	return CompiledPatterns.Email.MatchString(value)
}

// IsValidBatch reports whether the value matches the YYYY-YYYY batch format
func IsValidBatch(value string) bool {
	return CompiledPatterns.Batch.MatchString(value)
}

// IsValidRollNumber reports whether the value is an acceptable roll number
func IsValidRollNumber(value string) bool {
	return CompiledPatterns.RollNumber.MatchString(value)
}

// ValidSections lists the accepted class sections
var ValidSections = []string{"A", "B", "C"}

// IsValidSection reports whether the section is one of A, B, C
func IsValidSection(value string) bool {
	for _, s := range ValidSections {
		if value == s {
			return true
		}
	}
	return false
}

// IsValidSemester reports whether the semester number is within 1..8
func IsValidSemester(semester int) bool {
	return semester >= 1 && semester <= 8
}
