package form

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"plantmatch/internal/model"
)

var (
	specialCharsPattern = regexp.MustCompile(`[<>{}[\]\\/]`)
	alphanumericPattern = regexp.MustCompile(`^[a-zA-Z0-9\s]*$`)
)

// ValidateField checks a single response against its question's rules and
// returns a user-facing error message, or "" when the response is valid.
// It never panics: an internal failure is logged and reported as a
// generic retryable message.
func ValidateField(q *model.Question, resp *model.Response) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("field validation error for question %s: %v", q.ID, r)
			msg = "Validation error occurred. Please try again."
		}
	}()

	if resp.IsEmpty() {
		if q.Required {
			return fmt.Sprintf("%s is required", fieldDisplayName(q))
		}
		return ""
	}

	switch q.Type {
	case model.QuestionMultipleChoice:
		return validateMultipleChoiceResponse(q, resp)
	case model.QuestionSlider:
		return validateSliderResponse(q, resp)
	case model.QuestionText, model.QuestionTextarea:
		return validateTextResponse(q, resp.Value)
	case model.QuestionEmail:
		return validateEmailResponse(q, resp.Value)
	case model.QuestionSelect, model.QuestionRadio:
		return validateSingleSelection(q, resp.Value)
	case model.QuestionCheckbox:
		return validateCheckboxResponse(q, resp.SelectedValues)
	}
	return ""
}

func validateMultipleChoiceResponse(q *model.Question, resp *model.Response) string {
	if resp.SelectedOption == nil {
		return "Please select an option"
	}
	for i := range q.Options {
		if q.Options[i].ID == resp.SelectedOption.ID {
			if v := q.Validation; v != nil && v.MinSelections != nil && *v.MinSelections > 1 {
				return fmt.Sprintf("Please select at least %d options", *v.MinSelections)
			}
			return ""
		}
	}
	return "Invalid option selected"
}

func validateSliderResponse(q *model.Question, resp *model.Response) string {
	if resp.SelectedValue == nil {
		return "Please select a value"
	}
	val := *resp.SelectedValue

	min := 0
	max := 10
	if q.SliderConfig != nil {
		max = len(q.SliderConfig.Labels) - 1
	}
	if v := q.Validation; v != nil {
		if v.Min != nil {
			min = *v.Min
		}
		if v.Max != nil {
			max = *v.Max
		}
	}

	if val < min {
		return fmt.Sprintf("Value must be at least %d", min)
	}
	if val > max {
		return fmt.Sprintf("Value cannot exceed %d", max)
	}
	if q.SliderConfig != nil && val >= len(q.SliderConfig.Labels) {
		return "Invalid slider value selected"
	}
	return ""
}

func validateTextResponse(q *model.Question, value string) string {
	value = strings.TrimSpace(value)
	v := q.Validation
	if v == nil {
		return ""
	}

	length := utf8.RuneCountInString(value)
	if v.MinLength != nil && length < *v.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", fieldDisplayName(q), *v.MinLength)
	}
	if v.MaxLength != nil && length > *v.MaxLength {
		return fmt.Sprintf("%s cannot exceed %d characters", fieldDisplayName(q), *v.MaxLength)
	}

	if v.Pattern != "" {
		re, err := regexp.Compile(v.Pattern)
		if err != nil {
			log.Printf("invalid validation pattern for question %s: %v", q.ID, err)
			return "Configuration error in validation pattern"
		}
		if !re.MatchString(value) {
			if v.PatternMessage != "" {
				return v.PatternMessage
			}
			return fmt.Sprintf("%s: Invalid format", fieldDisplayName(q))
		}
	}

	if v.NoSpecialChars && specialCharsPattern.MatchString(value) {
		return fmt.Sprintf("%s contains invalid characters", fieldDisplayName(q))
	}
	if v.AlphanumericOnly && !alphanumericPattern.MatchString(value) {
		return fmt.Sprintf("%s must contain only letters and numbers", fieldDisplayName(q))
	}
	return ""
}

func validateEmailResponse(q *model.Question, value string) string {
	value = strings.TrimSpace(value)
	if !isValidEmail(value) {
		return "Please enter a valid email address"
	}

	v := q.Validation
	if v == nil {
		return ""
	}

	domain := strings.ToLower(value[strings.LastIndex(value, "@")+1:])
	if len(v.AllowedDomains) > 0 {
		allowed := false
		for _, d := range v.AllowedDomains {
			if strings.EqualFold(d, domain) {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Sprintf("Email must be from one of these domains: %s", strings.Join(v.AllowedDomains, ", "))
		}
	}
	for _, d := range v.BlockedDomains {
		if strings.EqualFold(d, domain) {
			return "This email domain is not allowed"
		}
	}
	return ""
}

// isValidEmail applies a pragmatic subset of RFC 5322: one @, sane
// dot placement, length limits on the address and its parts.
func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	if strings.Count(email, "@") != 1 {
		return false
	}

	local, domain := email[:at], email[at+1:]
	if len(local) > 64 || len(domain) < 4 {
		return false
	}
	if strings.Contains(email, "..") {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}

	dot := strings.LastIndex(domain, ".")
	if dot < 1 || len(domain)-dot-1 < 2 {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.ContainsAny(part, " <>") {
			return false
		}
	}
	return true
}

func validateSingleSelection(q *model.Question, value string) string {
	for i := range q.Options {
		if q.Options[i].Value == value {
			return ""
		}
	}
	return "Invalid selection"
}

func validateCheckboxResponse(q *model.Question, values []string) string {
	declared := make(map[string]bool, len(q.Options))
	for i := range q.Options {
		declared[q.Options[i].Value] = true
	}
	for _, val := range values {
		if !declared[val] {
			return "Invalid selection"
		}
	}

	if v := q.Validation; v != nil {
		if v.MinSelections != nil && len(values) < *v.MinSelections {
			return fmt.Sprintf("Please select at least %d options", *v.MinSelections)
		}
		if v.MaxSelections != nil && len(values) > *v.MaxSelections {
			return fmt.Sprintf("Please select no more than %d options", *v.MaxSelections)
		}
	}
	return ""
}

// fieldDisplayName returns a short name for a question suitable for
// error messages: the label when set, otherwise the question text with
// a trailing question mark stripped, truncated past 30 characters.
func fieldDisplayName(q *model.Question) string {
	if q.Label != "" {
		return q.Label
	}
	name := strings.TrimSuffix(strings.TrimSpace(q.Text), "?")
	if runes := []rune(name); len(runes) > 30 {
		return string(runes[:30]) + "..."
	}
	if name == "" {
		return "This field"
	}
	return name
}
