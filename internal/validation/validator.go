package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ashprao/chatbox/internal/constants"
)

// ValidatePositiveInt validates that a string represents a positive integer
func ValidatePositiveInt(value, fieldName string) (int, error) {
	trimmed := strings.TrimSpace(value)
	num, err := strconv.Atoi(trimmed)
	if err != nil || num <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", fieldName)
	}
	return num, nil
}

// ValidateNonNegativeInt validates that a string represents a non-negative integer
func ValidateNonNegativeInt(value, fieldName string) (int, error) {
	trimmed := strings.TrimSpace(value)
	num, err := strconv.Atoi(trimmed)
	if err != nil || num < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number", fieldName)
	}
	return num, nil
}

// ValidateFloat validates that a string represents a float within given bounds
func ValidateFloat(value, fieldName string, min, max float64) (float64, error) {
	trimmed := strings.TrimSpace(value)
	num, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || num < min || num > max {
		return 0, fmt.Errorf("%s must be a number between %.1f and %.1f", fieldName, min, max)
	}
	return num, nil
}

// ValidateUIValues validates common UI configuration values
func ValidateUIValues(windowWidth, windowHeight, sidebarWidth int) error {
	if windowWidth <= 0 {
		return fmt.Errorf("window width must be positive")
	}
	if windowHeight <= 0 {
		return fmt.Errorf("window height must be positive")
	}
	if sidebarWidth <= 0 {
		return fmt.Errorf("sidebar width must be positive")
	}
	if sidebarWidth >= windowWidth {
		return fmt.Errorf("sidebar width must be smaller than window width")
	}
	return nil
}

// ValidateFontSize checks a font size against the sizes offered in settings
func ValidateFontSize(size int) error {
	if size < constants.MinFontSize || size > constants.MaxFontSize {
		return fmt.Errorf("font size must be between %d and %d", constants.MinFontSize, constants.MaxFontSize)
	}
	return nil
}

// NormalizeTokenLimit checks a token limit typed by the user. "inf" and
// numbers above the slider maximum become "inf"; other non-negative numbers
// are stored as whole tokens.
func NormalizeTokenLimit(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == constants.TokenLimitInf {
		return constants.TokenLimitInf, nil
	}
	num, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(num) || num < 0 {
		return "", fmt.Errorf("token limit must be a non-negative number or %q", constants.TokenLimitInf)
	}
	if num > constants.TokenLimitMax {
		return constants.TokenLimitInf, nil
	}
	return strconv.Itoa(int(num)), nil
}

// SliderToTokenLimit converts a slider position into a stored limit. The
// maximum position means unlimited.
func SliderToTokenLimit(position float64) string {
	n := int(position)
	if n >= constants.TokenLimitMax {
		return constants.TokenLimitInf
	}
	return strconv.Itoa(n)
}

// TokenLimitToSlider converts a stored limit into a slider position, clamped
// to the slider range. "inf" and unparsable values sit at the maximum.
func TokenLimitToSlider(limit string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(limit), 64)
	if err != nil {
		return constants.TokenLimitMax
	}
	switch {
	case n < constants.TokenLimitMin:
		return constants.TokenLimitMin
	case n > constants.TokenLimitMax:
		return constants.TokenLimitMax
	}
	return n
}

// Severity of a HostIssue
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// HostIssue codes double as message ids for the settings dialog
const (
	IssueProxy    = "proxy_warning"
	IssueProtocol = "protocol_warning"
	IssueScheme   = "protocol_error"
)

// HostIssue is one problem found with an API host
type HostIssue struct {
	Code     string
	Severity Severity
}

var officialHost = regexp.MustCompile(`^(https?://)?api\.openai\.com(:\d+)?$`)

// CheckAPIHost lists the problems with host: not the official OpenAI host,
// plain http, or no http scheme at all
func CheckAPIHost(host string) []HostIssue {
	var issues []HostIssue
	if !officialHost.MatchString(host) {
		issues = append(issues, HostIssue{Code: IssueProxy, Severity: SeverityWarning})
	}
	if strings.HasPrefix(host, "http://") {
		issues = append(issues, HostIssue{Code: IssueProtocol, Severity: SeverityWarning})
	}
	if !strings.HasPrefix(host, "http") {
		issues = append(issues, HostIssue{Code: IssueScheme, Severity: SeverityError})
	}
	return issues
}

// HasErrors reports whether any issue is an error
func HasErrors(issues []HostIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
