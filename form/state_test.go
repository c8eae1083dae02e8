package form

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(State{FirstName: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"firstName":"Ada","lastName":"","email":"ada@example.com","terms":false,"type":null,"additionalInfo":""}`
	if string(data) != want {
		t.Errorf("Marshal() = %s\nwant %s", data, want)
	}

	data, _ = json.Marshal(State{Type: SubscriptionEnterprise, Terms: true})
	var got State
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Type != SubscriptionEnterprise || !got.Terms {
		t.Errorf("Unmarshal() = %+v", got)
	}
}

func TestResponseJSON(t *testing.T) {
	var resp Response
	body := `{"success":false,"errors":[{"field":"email","message":"bad"},{"field":null,"message":"down"},{"message":"x"}]}`
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatal(err)
	}
	want := Response{Errors: []FieldError{
		{Field: "email", Message: "bad"},
		{Message: "down"},
		{Message: "x"},
	}}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("Response mismatch (-want +got):\n%s", diff)
	}

	data, _ := json.Marshal(FieldError{Message: "error.generalMessage"})
	if string(data) != `{"field":null,"message":"error.generalMessage"}` {
		t.Errorf("Marshal(FieldError) = %s", data)
	}
}

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, ok := ParseField(string(f))
		if !ok || got != f {
			t.Errorf("ParseField(%q) = %q, %v", f, got, ok)
		}
	}
	if _, ok := ParseField("password"); ok {
		t.Error("ParseField(password) should fail")
	}
}

func TestSubscriptionOptions(t *testing.T) {
	opts := SubscriptionOptions()
	if len(opts) != 3 {
		t.Fatalf("len = %d, want 3", len(opts))
	}
	for _, o := range opts {
		if got, ok := ParseSubscriptionType(string(o.Value)); !ok || got != o.Value {
			t.Errorf("ParseSubscriptionType(%q) = %q, %v", o.Value, got, ok)
		}
	}
	if opts[1].Label != "Starter subscription (50 € / month)" {
		t.Errorf("starter label = %q", opts[1].Label)
	}
	if _, ok := ParseSubscriptionType("premium"); ok {
		t.Error("premium should not parse")
	}
}

func TestRules(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value any
		ok    bool
	}{
		{"required empty", Required(), "", false},
		{"required set", Required(), "Ada", true},
		{"required blank", Required(), "   ", false},
		{"required tab and newline", Required(), "\t\n", false},
		{"required padded", Required(), " Ada ", true},
		{"required unselected type", Required(), SubscriptionType(""), false},
		{"required unchecked", Required(), false, false},
		{"required checked", Required(), true, true},
		{"email empty passes", Email(), "", true},
		{"email valid", Email(), "ada@example.com", true},
		{"email invalid", Email(), "ada-at-example", false},
		{"max at limit", MaxLength(3), "abc", true},
		{"max over", MaxLength(3), "abcd", false},
		{"max counts runes", MaxLength(3), "äöü", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viol, ok := tt.rule.Check(FieldEmail, tt.value)
			if ok != tt.ok {
				t.Fatalf("Check(%v) ok = %v, want %v", tt.value, ok, tt.ok)
			}
			if !ok && (viol.Rule != tt.rule.Name() || viol.Field != FieldEmail) {
				t.Errorf("violation = %+v", viol)
			}
		})
	}
}

func TestValidatorViolations(t *testing.T) {
	v := NewValidator(DefaultRules())
	v.Evaluate(State{Email: "nope"})

	want := []Violation{{Field: FieldEmail, Rule: RuleEmail}}
	if diff := cmp.Diff(want, v.Violations(FieldEmail)); diff != "" {
		t.Errorf("Violations mismatch (-want +got):\n%s", diff)
	}
	if v.Invalid(FieldEmail) {
		t.Error("Evaluate should not touch")
	}
	if !v.TouchAll(State{Email: "nope"}) || !v.Invalid(FieldEmail) {
		t.Error("TouchAll should mark invalid email")
	}

	v.Reset()
	if v.Invalid(FieldEmail) || v.Violations(FieldEmail) != nil {
		t.Error("Reset should clear state")
	}
}
