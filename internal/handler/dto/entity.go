package dto

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/samber/lo"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/domain/entity"
	"github.com/SINTEF/entities-service/internal/soft"
)

// Violation is one broken rule of one submitted entity
type Violation struct {
	Index   int    `json:"index"`
	URI     string `json:"uri,omitempty"`
	Flavor  string `json:"flavor,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationItem is the outcome for one submitted entity
type ValidationItem struct {
	Index  int            `json:"index"`
	URI    string         `json:"uri,omitempty"`
	Valid  bool           `json:"valid"`
	Flavor string         `json:"flavor,omitempty"`
	Entity map[string]any `json:"entity,omitempty"` // canonical form, when valid
	Errors []Violation    `json:"errors,omitempty"`
}

// ValidateResponse POST /_api/validate
type ValidateResponse struct {
	Valid   int              `json:"valid"`
	Invalid int              `json:"invalid"`
	Results []ValidationItem `json:"results"`
}

// ParseEntities decodes a body holding one entity object or a list of them
func ParseEntities(body []byte) ([]map[string]any, error) {
	var payload any
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("body is not valid JSON: %w", err)
	}

	switch v := payload.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		raws := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d is not a JSON object", i)
			}
			raws = append(raws, m)
		}
		return raws, nil
	default:
		return nil, fmt.Errorf("body must be an entity object or a list of entity objects")
	}
}

// ToViolations converts domain violations to their wire form
func ToViolations(vs []domain.Violation) []Violation {
	if len(vs) == 0 {
		return nil
	}
	return lo.Map(vs, func(v domain.Violation, _ int) Violation {
		return Violation{
			Index:   v.Index,
			URI:     v.URI,
			Flavor:  v.Flavor,
			Kind:    v.Kind,
			Field:   v.Field,
			Message: v.Message,
		}
	})
}

// ToValidateResponse pairs every result with the raw entity it came from
func ToValidateResponse(raws []map[string]any, results []domain.ValidationResult) *ValidateResponse {
	resp := &ValidateResponse{Results: make([]ValidationItem, 0, len(results))}
	for i, res := range results {
		item := ValidationItem{Index: i, URI: soft.ClaimedURI(raws[i])}
		if res.Err != nil {
			item.Errors = ToViolations(domain.Violations(i, item.URI, res.Err))
			resp.Invalid++
		} else {
			item.Valid = true
			item.URI = res.Entity.URI()
			item.Flavor = res.Flavor.String()
			item.Entity = soft.Dump(res.Entity)
			resp.Valid++
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}

// ToEntityDocuments renders entities in their canonical wire form
func ToEntityDocuments(entities []*entity.Entity) []map[string]any {
	return lo.Map(entities, func(e *entity.Entity, _ int) map[string]any {
		return soft.Dump(e)
	})
}
