package form

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantmatch/internal/model"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func validConfig() *model.QuizConfig {
	return &model.QuizConfig{
		FormMetadata: model.FormMetadata{
			Title:       "Plant Match",
			Description: "Find your plant",
			Version:     "1.0",
		},
		Questions: []model.Question{
			{
				ID:   "q1",
				Text: "How much light does your space get?",
				Type: model.QuestionMultipleChoice,
				Options: []model.Option{
					{ID: "a", Text: "Lots", Tags: []string{"sun_lover"}},
					{ID: "b", Text: "Not much", Tags: []string{"shade_tolerant"}},
				},
			},
			{
				ID:   "q2",
				Text: "How often do you want to water?",
				Type: model.QuestionSlider,
				SliderConfig: &model.SliderConfig{
					Labels: []string{"Rarely", "Sometimes", "Often"},
					Tags:   [][]string{{"drought_tolerant"}, {}, {"thirsty"}},
				},
				Validation: &model.ValidationRules{Min: intPtr(0), Max: intPtr(2)},
			},
		},
		ResultConfig: model.ResultConfig{
			CalculationMethod: model.CalcWeightedTags,
			DisplayType:       model.DisplayPolaroid,
			CTAText:           "Get care tips",
			RestartText:       "Try again",
		},
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("valid document round-trips", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`{
			"formMetadata": {"title": "T", "description": "D", "version": "2.1.0"},
			"questions": [{
				"id": 1,
				"text": "Pick one",
				"type": "multiple_choice",
				"options": [
					{"id": "a", "text": "A", "tags": ["x"]},
					{"id": "b", "text": "B", "tags": ["y"], "weight": 2}
				]
			}],
			"resultConfig": {
				"calculationMethod": "weighted_tags",
				"displayType": "card",
				"ctaText": "Go",
				"restartText": "Again"
			}
		}`))
		require.NoError(t, err)
		require.Len(t, cfg.Questions, 1)
		assert.Equal(t, model.ID("1"), cfg.Questions[0].ID)
		assert.Equal(t, 2.0, cfg.Questions[0].Options[1].EffectiveWeight())
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseConfig([]byte(`nope`))
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Message, "valid JSON object")
	})

	t.Run("missing resultConfig fails before questions are checked", func(t *testing.T) {
		_, err := ParseConfig([]byte(`{
			"formMetadata": {"title": "T", "description": "D", "version": "1.0"},
			"questions": [{"id": "broken question with no type"}]
		}`))
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Message, "resultConfig")
		assert.NotContains(t, cfgErr.Message, "Question")
	})
}

func TestValidateConfigMetadata(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.QuizConfig)
		wantErr string
	}{
		{
			name:    "missing title",
			mutate:  func(c *model.QuizConfig) { c.FormMetadata.Title = "" },
			wantErr: "missing required metadata fields: title",
		},
		{
			name:    "bad version",
			mutate:  func(c *model.QuizConfig) { c.FormMetadata.Version = "v1" },
			wantErr: "semantic versioning",
		},
		{
			name: "title too long",
			mutate: func(c *model.QuizConfig) {
				long := make([]byte, 101)
				for i := range long {
					long[i] = 'x'
				}
				c.FormMetadata.Title = string(long)
			},
			wantErr: "between 1 and 100",
		},
		{
			name: "multibyte title at limit",
			mutate: func(c *model.QuizConfig) {
				c.FormMetadata.Title = strings.Repeat("ö", 100)
			},
		},
		{
			name: "multibyte title over limit",
			mutate: func(c *model.QuizConfig) {
				c.FormMetadata.Title = strings.Repeat("ö", 101)
			},
			wantErr: "between 1 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfigQuestions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.QuizConfig)
		wantErr string
	}{
		{
			name:    "no questions",
			mutate:  func(c *model.QuizConfig) { c.Questions = nil },
			wantErr: "at least one question",
		},
		{
			name: "too many questions",
			mutate: func(c *model.QuizConfig) {
				q := c.Questions[0]
				c.Questions = nil
				for i := 0; i < 51; i++ {
					qq := q
					qq.ID = model.ID(string(rune('A' + i%26)))
					c.Questions = append(c.Questions, qq)
				}
			},
			wantErr: "maximum 50 questions",
		},
		{
			name:    "missing id reports undefined",
			mutate:  func(c *model.QuizConfig) { c.Questions[0].ID = "" },
			wantErr: "Question 1 (ID: undefined)",
		},
		{
			name:    "duplicate question ids",
			mutate:  func(c *model.QuizConfig) { c.Questions[1].ID = "q1" },
			wantErr: "duplicate question ID: q1",
		},
		{
			name:    "unknown type",
			mutate:  func(c *model.QuizConfig) { c.Questions[0].Type = "dropdown" },
			wantErr: "unknown question type: dropdown",
		},
		{
			name: "text too long",
			mutate: func(c *model.QuizConfig) {
				long := make([]byte, 501)
				for i := range long {
					long[i] = 'x'
				}
				c.Questions[0].Text = string(long)
			},
			wantErr: "less than 500 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfigMultipleChoice(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *model.Question)
		wantErr string
	}{
		{
			name:    "one option",
			mutate:  func(q *model.Question) { q.Options = q.Options[:1] },
			wantErr: "at least 2 options",
		},
		{
			name: "too many options",
			mutate: func(q *model.Question) {
				opt := q.Options[0]
				q.Options = nil
				for i := 0; i < 11; i++ {
					o := opt
					o.ID = model.ID(string(rune('a' + i)))
					q.Options = append(q.Options, o)
				}
			},
			wantErr: "more than 10 options",
		},
		{
			name:    "duplicate option ids",
			mutate:  func(q *model.Question) { q.Options[1].ID = "a" },
			wantErr: "duplicate option ID: a",
		},
		{
			name:    "empty tags",
			mutate:  func(q *model.Question) { q.Options[0].Tags = []string{} },
			wantErr: "at least one tag",
		},
		{
			name:    "negative weight",
			mutate:  func(q *model.Question) { q.Options[0].Weight = floatPtr(-1) },
			wantErr: "weight must be a positive number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Questions[0])
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "Question 1 (ID: q1)")
		})
	}
}

func TestValidateConfigSlider(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *model.Question)
		wantErr string
	}{
		{
			name:    "missing sliderConfig",
			mutate:  func(q *model.Question) { q.SliderConfig = nil },
			wantErr: "must have sliderConfig",
		},
		{
			name:    "too few labels",
			mutate:  func(q *model.Question) { q.SliderConfig.Labels = []string{"only"} },
			wantErr: "between 2 and 7 labels",
		},
		{
			name: "tags length mismatch",
			mutate: func(q *model.Question) {
				q.SliderConfig.Tags = [][]string{{"a"}, {"b"}}
			},
			wantErr: "same length as labels",
		},
		{
			name:    "max out of range",
			mutate:  func(q *model.Question) { q.Validation.Max = intPtr(3) },
			wantErr: "less than 3",
		},
		{
			name: "min not below max",
			mutate: func(q *model.Question) {
				q.Validation.Min = intPtr(2)
				q.Validation.Max = intPtr(2)
			},
			wantErr: "min must be less than validation.max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Questions[1])
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfigResultConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.ResultConfig)
		wantErr string
	}{
		{
			name:    "missing ctaText",
			mutate:  func(rc *model.ResultConfig) { rc.CTAText = "" },
			wantErr: "resultConfig missing fields: ctaText",
		},
		{
			name:    "bad calculationMethod",
			mutate:  func(rc *model.ResultConfig) { rc.CalculationMethod = "magic" },
			wantErr: "calculationMethod must be one of",
		},
		{
			name:    "bad displayType",
			mutate:  func(rc *model.ResultConfig) { rc.DisplayType = "banner" },
			wantErr: "displayType must be one of",
		},
		{
			name:    "randomizationFactor above 1",
			mutate:  func(rc *model.ResultConfig) { rc.RandomizationFactor = floatPtr(1.5) },
			wantErr: "between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.ResultConfig)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfigLeadForm(t *testing.T) {
	base := func() *model.LeadFormConfig {
		return &model.LeadFormConfig{
			Title:      "Stay in touch",
			SubmitText: "Send",
			Fields: []model.LeadField{
				{Name: "name", Type: model.QuestionText, Label: "Your name"},
				{Name: "interest", Type: model.QuestionSelect, Label: "Interest", Options: []model.LeadOption{
					{Value: "tips", Text: "Care tips"},
				}},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		cfg := validConfig()
		cfg.LeadFormConfig = base()
		assert.NoError(t, ValidateConfig(cfg))
	})

	t.Run("bad field type", func(t *testing.T) {
		cfg := validConfig()
		cfg.LeadFormConfig = base()
		cfg.LeadFormConfig.Fields[0].Type = "color"
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lead form field 1")
	})

	t.Run("select without options", func(t *testing.T) {
		cfg := validConfig()
		cfg.LeadFormConfig = base()
		cfg.LeadFormConfig.Fields[1].Options = nil
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "select fields must have options")
	})
}
