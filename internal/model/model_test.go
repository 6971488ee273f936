package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ID
		wantErr bool
	}{
		{"string id", `"q1"`, "q1", false},
		{"numeric id", `42`, "42", false},
		{"float id", `1.5`, "1.5", false},
		{"bool rejected", `true`, "", true},
		{"object rejected", `{}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.raw), &id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestResponseIsEmpty(t *testing.T) {
	v := 0
	tests := []struct {
		name string
		resp *Response
		want bool
	}{
		{"nil response", nil, true},
		{"zero value", &Response{}, true},
		{"whitespace text", &Response{Value: "  \t "}, true},
		{"selected option", &Response{SelectedOption: &Option{ID: "a"}}, false},
		{"slider index zero", &Response{SelectedValue: &v}, false},
		{"text", &Response{Value: "hi"}, false},
		{"checkbox values", &Response{SelectedValues: []string{"x"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.IsEmpty())
		})
	}
}

func TestLeadFieldAsQuestion(t *testing.T) {
	minLen := 2
	f := &LeadField{
		Name:     "interest",
		Type:     QuestionSelect,
		Label:    "I'm interested because:",
		Required: true,
		Options: []LeadOption{
			{Value: "beginner", Text: "I'm a beginner"},
		},
		Validation: &ValidationRules{MinLength: &minLen},
	}

	q := f.AsQuestion()
	assert.Equal(t, ID("interest"), q.ID)
	assert.Equal(t, QuestionSelect, q.Type)
	assert.True(t, q.Required)
	require.Len(t, q.Options, 1)
	assert.Equal(t, "beginner", q.Options[0].Value)
	assert.Same(t, f.Validation, q.Validation)
}

func TestAnalyticsRecord(t *testing.T) {
	bundle := &FormResult{
		Tags:           []string{"chill", "chill", "bright"},
		CompletedAt:    time.Now(),
		FormVersion:    "1.0",
		TotalQuestions: 4,
		CompletionTime: &CompletionTime{TotalSeconds: 42},
	}

	rec := bundle.AnalyticsRecord()
	assert.Equal(t, "1.0", rec.FormVersion)
	assert.Equal(t, 4, rec.QuestionCount)
	assert.Equal(t, 42, rec.CompletionSeconds)
	assert.Equal(t, map[string]int{"chill": 2, "bright": 1}, rec.TagCounts)

	bundle.CompletionTime = nil
	assert.Equal(t, 0, bundle.AnalyticsRecord().CompletionSeconds)
}
