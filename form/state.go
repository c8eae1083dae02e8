package form

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field identifies one input of the signup form. The value is the JSON key
// and the HTML name attribute.
type Field string

const (
	FieldFirstName      Field = "firstName"
	FieldLastName       Field = "lastName"
	FieldEmail          Field = "email"
	FieldTerms          Field = "terms"
	FieldType           Field = "type"
	FieldAdditionalInfo Field = "additionalInfo"
)

// Fields lists every field in declaration order. Client-side error lists are
// built in this order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldTerms,
	FieldType,
	FieldAdditionalInfo,
}

// ParseField maps an input name back to a Field.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// SubscriptionType is the plan the user signs up for. The zero value means
// nothing was selected.
type SubscriptionType string

const (
	SubscriptionFree       SubscriptionType = "free"
	SubscriptionStarter    SubscriptionType = "starter"
	SubscriptionEnterprise SubscriptionType = "enterprise"
)

// SubscriptionOption is one entry of the subscription select.
type SubscriptionOption struct {
	Value SubscriptionType
	Label string
}

// SubscriptionOptions returns the selectable plans with their default
// English labels.
func SubscriptionOptions() []SubscriptionOption {
	return []SubscriptionOption{
		{Value: SubscriptionFree, Label: "Free trial subscription"},
		{Value: SubscriptionStarter, Label: "Starter subscription (50 € / month)"},
		{Value: SubscriptionEnterprise, Label: "Enterprise subscription (250 € / month)"},
	}
}

// ParseSubscriptionType returns the matching type, or false for anything
// outside the fixed set.
func ParseSubscriptionType(s string) (SubscriptionType, bool) {
	switch t := SubscriptionType(s); t {
	case SubscriptionFree, SubscriptionStarter, SubscriptionEnterprise:
		return t, true
	}
	return "", false
}

var jsonNull = []byte("null")

// MarshalJSON encodes an unset type as null.
func (t SubscriptionType) MarshalJSON() ([]byte, error) {
	if t == "" {
		return jsonNull, nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON accepts null as the unset type.
func (t *SubscriptionType) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("form: subscription type: %w", err)
	}
	*t = SubscriptionType(s)
	return nil
}

// State holds the user's input. It is posted to the signup API as a flat
// JSON object.
type State struct {
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Email          string           `json:"email"`
	Terms          bool             `json:"terms"`
	Type           SubscriptionType `json:"type"`
	AdditionalInfo string           `json:"additionalInfo"`
}

// Value returns the raw value of a field for rule evaluation.
func (s State) Value(f Field) any {
	switch f {
	case FieldFirstName:
		return s.FirstName
	case FieldLastName:
		return s.LastName
	case FieldEmail:
		return s.Email
	case FieldTerms:
		return s.Terms
	case FieldType:
		return string(s.Type)
	case FieldAdditionalInfo:
		return s.AdditionalInfo
	}
	return nil
}

// FieldError is one entry of the form's error list. An empty Field marks a
// form-wide error; an empty Message means the display layer resolves the
// text from the field.
type FieldError struct {
	Field   string
	Message string
}

type fieldErrorJSON struct {
	Field   *string `json:"field"`
	Message *string `json:"message"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MarshalJSON encodes empty members as null.
func (e FieldError) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldErrorJSON{Field: optional(e.Field), Message: optional(e.Message)})
}

// UnmarshalJSON treats null or missing members as empty.
func (e *FieldError) UnmarshalJSON(data []byte) error {
	var raw fieldErrorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = FieldError{}
	if raw.Field != nil {
		e.Field = *raw.Field
	}
	if raw.Message != nil {
		e.Message = *raw.Message
	}
	return nil
}

// Response is the signup API's reply.
type Response struct {
	Success bool         `json:"success"`
	Errors  []FieldError `json:"errors,omitempty"`
}
