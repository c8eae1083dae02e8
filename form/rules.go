package form

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// engine is safe for concurrent use and caches parsed tags.
var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Rule names.
const (
	RuleRequired  = "required"
	RuleEmail     = "email"
	RuleMaxLength = "maxLength"
)

// Rule is a named predicate over one field value, expressed as a
// validator tag.
type Rule struct {
	name  string
	tag   string
	limit int
}

// Required fails on the zero value and on strings holding only whitespace:
// an empty or blank string, an unselected type or an unchecked box. The
// stored value is checked trimmed but never modified.
func Required() Rule {
	return Rule{name: RuleRequired, tag: "notblank"}
}

// Email checks the address shape of a non-empty value.
func Email() Rule {
	return Rule{name: RuleEmail, tag: "omitempty,email"}
}

// MaxLength limits a string to n Unicode code points.
func MaxLength(n int) Rule {
	return Rule{name: RuleMaxLength, tag: "max=" + strconv.Itoa(n), limit: n}
}

// Name returns the rule's name.
func (r Rule) Name() string { return r.name }

// Limit returns the length limit of a MaxLength rule and 0 otherwise.
func (r Rule) Limit() int { return r.limit }

// Violation describes a failed rule.
type Violation struct {
	Field Field
	Rule  string
	Limit int
}

// Check evaluates the rule against value.
func (r Rule) Check(f Field, value any) (Violation, bool) {
	if err := engine.Var(value, r.tag); err != nil {
		return Violation{Field: f, Rule: r.name, Limit: r.limit}, false
	}
	return Violation{}, true
}

// DefaultRules returns the signup form's rule set.
func DefaultRules() map[Field][]Rule {
	return map[Field][]Rule{
		FieldEmail:          {Required(), Email()},
		FieldFirstName:      {Required()},
		FieldLastName:       {Required()},
		FieldType:           {Required()},
		FieldTerms:          {Required()},
		FieldAdditionalInfo: {MaxLength(1000)},
	}
}
