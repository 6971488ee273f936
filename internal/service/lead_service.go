package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"plantmatch/internal/form"
	"plantmatch/internal/model"
	"plantmatch/internal/repository"
)

// LeadService validates and stores contact submissions from the
// post-result lead form.
type LeadService struct {
	leadRepo    repository.LeadRepo
	leadCfg     *model.LeadFormConfig
	broadcaster Broadcaster
}

// NewLeadService creates a new lead service. leadCfg may be nil when
// the configuration declares no lead form; submissions are then
// rejected.
func NewLeadService(leadRepo repository.LeadRepo, leadCfg *model.LeadFormConfig) *LeadService {
	return &LeadService{
		leadRepo: leadRepo,
		leadCfg:  leadCfg,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *LeadService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit validates a submission against the configured lead fields and
// stores it. Validation failures come back as a field-name keyed map;
// the lead is only stored when the map is empty.
func (s *LeadService) Submit(ctx context.Context, visitorID string, sub *model.LeadSubmission) (map[string]string, error) {
	if s.leadCfg == nil {
		return nil, fmt.Errorf("lead form is not configured")
	}

	fieldErrors := make(map[string]string)
	values := make(map[string]any, len(s.leadCfg.Fields))
	for i := range s.leadCfg.Fields {
		field := &s.leadCfg.Fields[i]
		resp := leadResponse(field, sub.Values[field.Name])
		if msg := form.ValidateField(field.AsQuestion(), resp); msg != "" {
			fieldErrors[field.Name] = msg
			continue
		}
		if raw, ok := sub.Values[field.Name]; ok {
			values[field.Name] = raw
		}
	}
	if len(fieldErrors) > 0 {
		return fieldErrors, nil
	}

	lead := &model.Lead{
		ID:        uuid.New().String(),
		VisitorID: visitorID,
		PlantName: sub.PlantName,
		Values:    values,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to store lead: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToHosts(EventLeadCaptured, lead)
	}
	return nil, nil
}

// GetAll returns every captured lead, newest first
func (s *LeadService) GetAll(ctx context.Context) ([]*model.Lead, error) {
	return s.leadRepo.GetAll(ctx)
}

// leadResponse shapes a raw submitted value into the response form the
// field validator expects for the field's type.
func leadResponse(field *model.LeadField, raw any) *model.Response {
	resp := &model.Response{Type: field.Type}
	switch field.Type {
	case model.QuestionCheckbox:
		if list, ok := raw.([]any); ok {
			for _, v := range list {
				if str, ok := v.(string); ok {
					resp.SelectedValues = append(resp.SelectedValues, str)
				}
			}
		}
	default:
		if str, ok := raw.(string); ok {
			resp.Value = str
		}
	}
	return resp
}
