package model

import (
	"strings"
	"time"
)

// Response is a recorded answer to one question. Which fields are set
// depends on Type; every response carries the timestamp it was recorded
// at and the text of the question it answers.
type Response struct {
	Type           QuestionType `json:"type"`
	SelectedOption *Option      `json:"selectedOption,omitempty"` // multiple_choice
	SelectedValue  *int         `json:"selectedValue,omitempty"`  // slider index
	SelectedLabel  string       `json:"selectedLabel,omitempty"`  // slider label at index
	SelectedValues []string     `json:"selectedValues,omitempty"` // checkbox
	Value          string       `json:"value,omitempty"`          // text, email, select, radio, textarea
	Tags           []string     `json:"tags,omitempty"`
	Weight         float64      `json:"weight,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
	QuestionText   string       `json:"questionText"`
}

// IsEmpty reports whether the response carries no usable answer.
// Whitespace-only text counts as empty.
func (r *Response) IsEmpty() bool {
	if r == nil {
		return true
	}
	if r.SelectedOption != nil {
		return false
	}
	if r.SelectedValue != nil {
		return false
	}
	if strings.TrimSpace(r.Value) != "" {
		return false
	}
	if len(r.SelectedValues) > 0 {
		return false
	}
	return true
}
