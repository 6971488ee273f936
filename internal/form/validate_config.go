package form

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"plantmatch/internal/model"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// allowedTopLevelKeys are the recognized configuration document keys.
// "styling" is accepted and ignored; it belongs to the widget chrome.
var allowedTopLevelKeys = map[string]bool{
	"formMetadata":   true,
	"styling":        true,
	"questions":      true,
	"resultConfig":   true,
	"leadFormConfig": true,
}

// ParseConfig parses and validates a raw configuration document.
// Validation stops at the first failure; the returned error is always a
// *ConfigurationError naming the offending field.
func ParseConfig(data []byte) (*model.QuizConfig, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, configError("configuration must be a valid JSON object", map[string]any{
			"parseError": err.Error(),
		})
	}

	if err := checkTopLevelKeys(raw); err != nil {
		return nil, err
	}

	var cfg model.QuizConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, configError(fmt.Sprintf("configuration has malformed fields: %v", err), map[string]any{
			"configKeys": topLevelKeys(raw),
		})
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	log.Printf("Form config validated: %d questions, version %s",
		len(cfg.Questions), cfg.FormMetadata.Version)
	return &cfg, nil
}

// ValidateConfig validates an already-decoded configuration document.
// The returned error, if any, is a *ConfigurationError.
func ValidateConfig(cfg *model.QuizConfig) error {
	if cfg == nil {
		return configError("configuration must be a valid JSON object", nil)
	}

	wrap := func(err error) error {
		return configError(err.Error(), map[string]any{
			"questionCount": len(cfg.Questions),
			"version":       cfg.FormMetadata.Version,
		})
	}

	if err := validateMetadata(&cfg.FormMetadata); err != nil {
		return wrap(err)
	}
	if err := validateQuestions(cfg.Questions); err != nil {
		return wrap(err)
	}
	if err := validateResultConfig(&cfg.ResultConfig); err != nil {
		return wrap(err)
	}
	if cfg.LeadFormConfig != nil {
		if err := validateLeadFormConfig(cfg.LeadFormConfig); err != nil {
			return wrap(err)
		}
	}
	return nil
}

func checkTopLevelKeys(raw map[string]json.RawMessage) error {
	required := []string{"formMetadata", "questions", "resultConfig"}
	var missing []string
	for _, key := range required {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return configError(
			fmt.Sprintf("missing required top-level fields: %s", strings.Join(missing, ", ")),
			map[string]any{"missingFields": missing, "configKeys": topLevelKeys(raw)},
		)
	}

	// Unrecognized keys are usually typos; warn but carry on.
	var unexpected []string
	for key := range raw {
		if !allowedTopLevelKeys[key] {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		log.Printf("Warning: unexpected fields in config: %s", strings.Join(unexpected, ", "))
	}
	return nil
}

func topLevelKeys(raw map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	return keys
}

func validateMetadata(meta *model.FormMetadata) error {
	var missing []string
	if meta.Title == "" {
		missing = append(missing, "title")
	}
	if meta.Description == "" {
		missing = append(missing, "description")
	}
	if meta.Version == "" {
		missing = append(missing, "version")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required metadata fields: %s", strings.Join(missing, ", "))
	}

	if !versionPattern.MatchString(meta.Version) {
		return fmt.Errorf(`version must be in semantic versioning format (e.g., "1.0" or "1.0.0")`)
	}
	if utf8.RuneCountInString(meta.Title) > 100 {
		return fmt.Errorf("title must be between 1 and 100 characters")
	}
	return nil
}

func validateQuestions(questions []model.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("at least one question is required")
	}
	if len(questions) > 50 {
		return fmt.Errorf("maximum 50 questions allowed")
	}

	seen := make(map[model.ID]bool)
	for i := range questions {
		q := &questions[i]
		if err := validateQuestion(q, seen); err != nil {
			id := "undefined"
			if q.ID != "" {
				id = string(q.ID)
			}
			return fmt.Errorf("Question %d (ID: %s): %v", i+1, id, err)
		}
	}
	return nil
}

func validateQuestion(q *model.Question, seen map[model.ID]bool) error {
	var missing []string
	if q.ID == "" {
		missing = append(missing, "id")
	}
	if q.Text == "" {
		missing = append(missing, "text")
	}
	if q.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text must be a non-empty string")
	}
	if utf8.RuneCountInString(q.Text) > 500 {
		return fmt.Errorf("question text must be less than 500 characters")
	}

	if seen[q.ID] {
		return fmt.Errorf("duplicate question ID: %s", q.ID)
	}
	seen[q.ID] = true

	switch q.Type {
	case model.QuestionMultipleChoice:
		return validateMultipleChoiceQuestion(q)
	case model.QuestionSlider:
		return validateSliderQuestion(q)
	case model.QuestionText, model.QuestionEmail:
		return validateTextRules(q.Validation)
	case model.QuestionSelect, model.QuestionRadio, model.QuestionCheckbox:
		return validateValueOptions(q)
	default:
		return fmt.Errorf("unknown question type: %s", q.Type)
	}
}

func validateMultipleChoiceQuestion(q *model.Question) error {
	if len(q.Options) == 0 {
		return fmt.Errorf("multiple choice questions must have an options array")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("multiple choice questions must have at least 2 options")
	}
	if len(q.Options) > 10 {
		return fmt.Errorf("multiple choice questions cannot have more than 10 options")
	}

	seen := make(map[model.ID]bool)
	for i := range q.Options {
		opt := &q.Options[i]
		var missing []string
		if opt.ID == "" {
			missing = append(missing, "id")
		}
		if opt.Text == "" {
			missing = append(missing, "text")
		}
		if opt.Tags == nil {
			missing = append(missing, "tags")
		}
		if len(missing) > 0 {
			return fmt.Errorf("option %d missing fields: %s", i+1, strings.Join(missing, ", "))
		}

		if seen[opt.ID] {
			return fmt.Errorf("duplicate option ID: %s", opt.ID)
		}
		seen[opt.ID] = true

		if len(opt.Tags) == 0 {
			return fmt.Errorf("option %d: at least one tag is required", i+1)
		}
		if opt.Weight != nil && *opt.Weight < 0 {
			return fmt.Errorf("option %d: weight must be a positive number", i+1)
		}
	}
	return nil
}

func validateSliderQuestion(q *model.Question) error {
	sc := q.SliderConfig
	if sc == nil {
		return fmt.Errorf("slider questions must have sliderConfig")
	}

	var missing []string
	if sc.Labels == nil {
		missing = append(missing, "labels")
	}
	if sc.Tags == nil {
		missing = append(missing, "tags")
	}
	if len(missing) > 0 {
		return fmt.Errorf("sliderConfig missing fields: %s", strings.Join(missing, ", "))
	}

	if len(sc.Labels) < 2 || len(sc.Labels) > 7 {
		return fmt.Errorf("slider must have between 2 and 7 labels")
	}
	if len(sc.Tags) != len(sc.Labels) {
		return fmt.Errorf("sliderConfig.tags array must have same length as labels array")
	}
	for i, tagSet := range sc.Tags {
		if tagSet == nil {
			return fmt.Errorf("sliderConfig.tags[%d] must be an array", i)
		}
	}
	if len(sc.Weights) > 0 && len(sc.Weights) != len(sc.Labels) {
		return fmt.Errorf("sliderConfig.weights array must have same length as labels array")
	}

	if v := q.Validation; v != nil {
		if v.Min != nil && *v.Min < 0 {
			return fmt.Errorf("validation.min must be a non-negative number")
		}
		if v.Max != nil && *v.Max >= len(sc.Labels) {
			return fmt.Errorf("validation.max must be a number less than %d", len(sc.Labels))
		}
		if v.Min != nil && v.Max != nil && *v.Min >= *v.Max {
			return fmt.Errorf("validation.min must be less than validation.max")
		}
	}
	return nil
}

func validateTextRules(v *model.ValidationRules) error {
	if v == nil {
		return nil
	}
	if v.MinLength != nil && *v.MinLength < 0 {
		return fmt.Errorf("validation.minLength must be a non-negative number")
	}
	if v.MaxLength != nil && *v.MaxLength < 1 {
		return fmt.Errorf("validation.maxLength must be a positive number")
	}
	if v.MinLength != nil && v.MaxLength != nil && *v.MinLength >= *v.MaxLength {
		return fmt.Errorf("validation.minLength must be less than validation.maxLength")
	}
	return nil
}

// validateValueOptions covers select, radio and checkbox questions,
// whose options carry value/text pairs rather than scoring tags.
func validateValueOptions(q *model.Question) error {
	if len(q.Options) == 0 {
		return fmt.Errorf("%s questions must have a non-empty options array", q.Type)
	}
	for i := range q.Options {
		opt := &q.Options[i]
		if opt.Value == "" || opt.Text == "" {
			return fmt.Errorf("option %d: must have value and text", i+1)
		}
	}
	if v := q.Validation; v != nil {
		if v.MinSelections != nil && *v.MinSelections < 0 {
			return fmt.Errorf("validation.minSelections must be a non-negative number")
		}
		if v.MinSelections != nil && v.MaxSelections != nil && *v.MinSelections > *v.MaxSelections {
			return fmt.Errorf("validation.minSelections cannot exceed validation.maxSelections")
		}
	}
	return nil
}

func validateResultConfig(rc *model.ResultConfig) error {
	var missing []string
	if rc.CalculationMethod == "" {
		missing = append(missing, "calculationMethod")
	}
	if rc.DisplayType == "" {
		missing = append(missing, "displayType")
	}
	if rc.CTAText == "" {
		missing = append(missing, "ctaText")
	}
	if rc.RestartText == "" {
		missing = append(missing, "restartText")
	}
	if len(missing) > 0 {
		return fmt.Errorf("resultConfig missing fields: %s", strings.Join(missing, ", "))
	}

	switch rc.CalculationMethod {
	case model.CalcWeightedTags, model.CalcSimpleTags, model.CalcCustom:
	default:
		return fmt.Errorf("calculationMethod must be one of: weighted_tags, simple_tags, custom")
	}

	switch rc.DisplayType {
	case model.DisplayPolaroid, model.DisplayCard, model.DisplayList, model.DisplayCustom:
	default:
		return fmt.Errorf("displayType must be one of: polaroid, card, list, custom")
	}

	if rc.RandomizationFactor != nil {
		if rf := *rc.RandomizationFactor; rf < 0 || rf > 1 {
			return fmt.Errorf("randomizationFactor must be a number between 0 and 1")
		}
	}
	return nil
}

func validateLeadFormConfig(lf *model.LeadFormConfig) error {
	var missing []string
	if lf.Title == "" {
		missing = append(missing, "title")
	}
	if lf.Fields == nil {
		missing = append(missing, "fields")
	}
	if lf.SubmitText == "" {
		missing = append(missing, "submitText")
	}
	if len(missing) > 0 {
		return fmt.Errorf("leadFormConfig missing fields: %s", strings.Join(missing, ", "))
	}

	for i := range lf.Fields {
		if err := validateLeadField(&lf.Fields[i]); err != nil {
			return fmt.Errorf("lead form field %d: %v", i+1, err)
		}
	}
	return nil
}

func validateLeadField(f *model.LeadField) error {
	var missing []string
	if f.Name == "" {
		missing = append(missing, "name")
	}
	if f.Type == "" {
		missing = append(missing, "type")
	}
	if f.Label == "" {
		missing = append(missing, "label")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing: %s", strings.Join(missing, ", "))
	}

	switch f.Type {
	case model.QuestionText, model.QuestionEmail, model.QuestionSelect,
		model.QuestionRadio, model.QuestionCheckbox, model.QuestionTextarea:
	default:
		return fmt.Errorf("type must be one of text, email, select, radio, checkbox, textarea")
	}

	if f.Type == model.QuestionSelect || f.Type == model.QuestionRadio {
		if len(f.Options) == 0 {
			return fmt.Errorf("%s fields must have options array", f.Type)
		}
		for i, opt := range f.Options {
			if opt.Value == "" || opt.Text == "" {
				return fmt.Errorf("option %d: must have value and text", i+1)
			}
		}
	}

	// Well-formedness only; the rules themselves are enforced per-field
	// at submission time.
	if v := f.Validation; v != nil {
		if v.MinLength != nil && *v.MinLength < 0 {
			return fmt.Errorf("validation.minLength must be a non-negative number")
		}
		if v.MaxLength != nil && *v.MaxLength < 1 {
			return fmt.Errorf("validation.maxLength must be a positive number")
		}
	}
	return nil
}
