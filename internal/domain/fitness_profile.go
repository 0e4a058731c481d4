package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"
)

// FlexString is a text value that tolerates whatever the web form or an LLM
// sends for it. Strings are kept as-is, numbers and booleans keep their
// literal spelling, null becomes empty and arrays are joined with ", ".
// It always marshals back to a JSON string.
type FlexString string

var errObjectAsText = errors.New("object cannot be used as a text value")

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = FlexString(v)
	case '[':
		var items []FlexString
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item != "" {
				parts = append(parts, string(item))
			}
		}
		*s = FlexString(strings.Join(parts, ", "))
	case '{':
		return errObjectAsText
	default:
		*s = FlexString(trimmed)
	}
	return nil
}

// String returns the raw text.
func (s FlexString) String() string { return string(s) }

// Lower returns the text lower-cased for keyword matching.
func (s FlexString) Lower() string { return strings.ToLower(string(s)) }

// FitnessProfile is the fitness intake form. Every field is optional free
// text; absent fields behave as neutral defaults during plan generation.
// Age, gender, height and weight are display-only.
type FitnessProfile struct {
	Age                 FlexString `json:"age,omitempty"`
	Gender              FlexString `json:"gender,omitempty"`
	Height              FlexString `json:"height,omitempty"`
	Weight              FlexString `json:"weight,omitempty"`
	FitnessLevel        FlexString `json:"fitnessLevel,omitempty"` // beginner, intermediate or advanced
	FitnessGoals        FlexString `json:"fitnessGoals,omitempty"`
	HealthConditions    FlexString `json:"healthConditions,omitempty"`
	DietaryRestrictions FlexString `json:"dietaryRestrictions,omitempty"`
	Injuries            FlexString `json:"injuries,omitempty"`
	PreferredActivities FlexString `json:"preferredActivities,omitempty"`
	DislikedActivities  FlexString `json:"dislikedActivities,omitempty"`
	AvailableEquipment  FlexString `json:"availableEquipment,omitempty"`
	TimeCommitment      FlexString `json:"timeCommitment,omitempty"`
	AdditionalInfo      FlexString `json:"additionalInfo,omitempty"`
}

// ErrProfileNotObject is returned when an intake form is not a JSON object.
var ErrProfileNotObject = errors.New("intake form must be a JSON object")

// DecodeFitnessProfile reads an intake form given either bare or wrapped in
// "formData". Fields that cannot be read as text are skipped; their names are
// returned, sorted, so callers can report them. Unknown keys are ignored.
func DecodeFitnessProfile(raw []byte) (FitnessProfile, []string, error) {
	var profile FitnessProfile

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return profile, nil, ErrProfileNotObject
	}
	if wrapped, ok := fields["formData"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(wrapped, &inner); err == nil && inner != nil {
			fields = inner
		}
	}

	var skipped []string
	for key, value := range fields {
		var v FlexString
		if err := json.Unmarshal(value, &v); err != nil {
			skipped = append(skipped, key)
			delete(fields, key)
		}
	}
	slices.Sort(skipped)

	cleaned, err := json.Marshal(fields)
	if err != nil {
		return profile, skipped, err
	}
	if err := json.Unmarshal(cleaned, &profile); err != nil {
		return profile, skipped, err
	}
	return profile, skipped, nil
}

// FitnessProfileFromData decodes a stored profile document the same way
// DecodeFitnessProfile decodes a request body.
func FitnessProfileFromData(data map[string]interface{}) (FitnessProfile, []string, error) {
	if len(data) == 0 {
		return FitnessProfile{}, nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return FitnessProfile{}, nil, err
	}
	return DecodeFitnessProfile(raw)
}
