package model

import (
	"encoding/json"
	"fmt"
)

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice" // Tap an option, auto-advances
	QuestionSlider         QuestionType = "slider"          // Pick an index on a labeled range
	QuestionText           QuestionType = "text"            // Free text

	// Accepted as configuration and validated per-field, but not rendered
	// by the widget's question renderer. Lead form fields reuse these.
	QuestionEmail    QuestionType = "email"
	QuestionSelect   QuestionType = "select"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionTextarea QuestionType = "textarea"
)

// ID is a question or option identifier. Configuration documents may
// declare ids as JSON numbers or strings; both normalize to a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	return fmt.Errorf("id must be a number or string, got %s", string(data))
}

// QuizConfig is the declarative form configuration document, consumed
// once at startup and immutable after validation.
type QuizConfig struct {
	FormMetadata   FormMetadata    `json:"formMetadata" bson:"formMetadata"`
	Questions      []Question      `json:"questions" bson:"questions"`
	ResultConfig   ResultConfig    `json:"resultConfig" bson:"resultConfig"`
	LeadFormConfig *LeadFormConfig `json:"leadFormConfig,omitempty" bson:"leadFormConfig,omitempty"`
}

// FormMetadata documents the form itself
type FormMetadata struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Version     string `json:"version" bson:"version"` // semantic version, e.g. "1.0" or "1.0.0"
}

// Question is one step of the quiz. The populated fields depend on Type.
type Question struct {
	ID           ID               `json:"id" bson:"id"`
	Text         string           `json:"text" bson:"text"`
	Label        string           `json:"label,omitempty" bson:"label,omitempty"` // Short display name for error messages
	Description  string           `json:"description,omitempty" bson:"description,omitempty"`
	Type         QuestionType     `json:"type" bson:"type"`
	Required     bool             `json:"required,omitempty" bson:"required,omitempty"`
	Options      []Option         `json:"options,omitempty" bson:"options,omitempty"`           // multiple_choice, select, radio, checkbox
	SliderConfig *SliderConfig    `json:"sliderConfig,omitempty" bson:"sliderConfig,omitempty"` // slider only
	Validation   *ValidationRules `json:"validation,omitempty" bson:"validation,omitempty"`
}

// Option is a selectable answer. Multiple-choice options carry id, text
// and scoring tags; select/radio/checkbox options carry value and text.
type Option struct {
	ID          ID       `json:"id,omitempty" bson:"id,omitempty"`
	Text        string   `json:"text" bson:"text"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Weight      *float64 `json:"weight,omitempty" bson:"weight,omitempty"` // >= 0, defaults to 1.0
	Value       string   `json:"value,omitempty" bson:"value,omitempty"`
}

// EffectiveWeight returns the option weight, defaulting to 1.0.
func (o *Option) EffectiveWeight() float64 {
	if o.Weight == nil {
		return 1.0
	}
	return *o.Weight
}

// SliderConfig maps slider positions to labels and scoring tags.
// Tags must have the same length as Labels.
type SliderConfig struct {
	Labels  []string   `json:"labels" bson:"labels"`
	Tags    [][]string `json:"tags" bson:"tags"`
	Weights []float64  `json:"weights,omitempty" bson:"weights,omitempty"`
}

// ValidationRules are the declarative per-field rules. Which fields
// apply depends on the question type.
type ValidationRules struct {
	Min              *int     `json:"min,omitempty" bson:"min,omitempty"`   // slider lower bound
	Max              *int     `json:"max,omitempty" bson:"max,omitempty"`   // slider upper bound
	Step             *int     `json:"step,omitempty" bson:"step,omitempty"` // slider step, UI hint only
	MinLength        *int     `json:"minLength,omitempty" bson:"minLength,omitempty"`
	MaxLength        *int     `json:"maxLength,omitempty" bson:"maxLength,omitempty"`
	Pattern          string   `json:"pattern,omitempty" bson:"pattern,omitempty"`
	PatternMessage   string   `json:"patternMessage,omitempty" bson:"patternMessage,omitempty"`
	NoSpecialChars   bool     `json:"noSpecialChars,omitempty" bson:"noSpecialChars,omitempty"`
	AlphanumericOnly bool     `json:"alphanumericOnly,omitempty" bson:"alphanumericOnly,omitempty"`
	MinSelections    *int     `json:"minSelections,omitempty" bson:"minSelections,omitempty"`
	MaxSelections    *int     `json:"maxSelections,omitempty" bson:"maxSelections,omitempty"`
	AllowedDomains   []string `json:"allowedDomains,omitempty" bson:"allowedDomains,omitempty"`
	BlockedDomains   []string `json:"blockedDomains,omitempty" bson:"blockedDomains,omitempty"`
}

// CalculationMethod describes how the result is computed
type CalculationMethod string

const (
	CalcWeightedTags CalculationMethod = "weighted_tags"
	CalcSimpleTags   CalculationMethod = "simple_tags"
	CalcCustom       CalculationMethod = "custom"
)

// DisplayType describes how the result is rendered
type DisplayType string

const (
	DisplayPolaroid DisplayType = "polaroid"
	DisplayCard     DisplayType = "card"
	DisplayList     DisplayType = "list"
	DisplayCustom   DisplayType = "custom"
)

// ResultConfig configures result calculation and presentation
type ResultConfig struct {
	CalculationMethod   CalculationMethod `json:"calculationMethod" bson:"calculationMethod"`
	DisplayType         DisplayType       `json:"displayType" bson:"displayType"`
	CTAText             string            `json:"ctaText" bson:"ctaText"`
	RestartText         string            `json:"restartText" bson:"restartText"`
	RandomizationFactor *float64          `json:"randomizationFactor,omitempty" bson:"randomizationFactor,omitempty"` // [0,1]
}

// LeadFormConfig configures the post-result contact form
type LeadFormConfig struct {
	Title      string      `json:"title" bson:"title"`
	Fields     []LeadField `json:"fields" bson:"fields"`
	SubmitText string      `json:"submitText" bson:"submitText"`
}

// LeadField is one input of the lead form
type LeadField struct {
	Name       string           `json:"name" bson:"name"`
	Type       QuestionType     `json:"type" bson:"type"` // text, email, select, radio, checkbox, textarea
	Label      string           `json:"label" bson:"label"`
	Required   bool             `json:"required,omitempty" bson:"required,omitempty"`
	Options    []LeadOption     `json:"options,omitempty" bson:"options,omitempty"`
	Validation *ValidationRules `json:"validation,omitempty" bson:"validation,omitempty"`
}

// LeadOption is a selectable value of a select/radio/checkbox lead field
type LeadOption struct {
	Value string `json:"value" bson:"value"`
	Text  string `json:"text" bson:"text"`
}

// AsQuestion converts a lead field into a question so lead submissions
// run through the same per-field validation as quiz responses.
func (f *LeadField) AsQuestion() *Question {
	opts := make([]Option, 0, len(f.Options))
	for _, o := range f.Options {
		opts = append(opts, Option{Value: o.Value, Text: o.Text})
	}
	return &Question{
		ID:         ID(f.Name),
		Text:       f.Label,
		Label:      f.Label,
		Type:       f.Type,
		Required:   f.Required,
		Options:    opts,
		Validation: f.Validation,
	}
}
