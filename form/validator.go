package form

import "unicode/utf8"

type fieldStatus struct {
	touched    bool
	violations []Violation
}

// Validator tracks per-field violations and whether the user has touched
// each field. It is not safe for concurrent use; Form serialises access.
type Validator struct {
	rules  map[Field][]Rule
	status map[Field]*fieldStatus
}

// NewValidator creates a validator for the given rule set.
func NewValidator(rules map[Field][]Rule) *Validator {
	v := &Validator{rules: rules}
	v.Reset()
	return v
}

// Reset clears all violations and touched flags.
func (v *Validator) Reset() {
	v.status = make(map[Field]*fieldStatus, len(v.rules))
	for f := range v.rules {
		v.status[f] = &fieldStatus{}
	}
}

func (v *Validator) check(f Field, s State) {
	st, ok := v.status[f]
	if !ok {
		return
	}
	st.violations = st.violations[:0]
	value := s.Value(f)
	for _, r := range v.rules[f] {
		if viol, ok := r.Check(f, value); !ok {
			st.violations = append(st.violations, viol)
		}
	}
}

// Evaluate recomputes violations for every field. Touched flags are kept.
func (v *Validator) Evaluate(s State) {
	for f := range v.rules {
		v.check(f, s)
	}
}

// TouchAll validates and touches every field, reporting whether any field
// is invalid.
func (v *Validator) TouchAll(s State) bool {
	invalid := false
	for f, st := range v.status {
		v.check(f, s)
		st.touched = true
		if len(st.violations) > 0 {
			invalid = true
		}
	}
	return invalid
}

// Touch validates and touches a single field, reporting whether it is
// invalid.
func (v *Validator) Touch(f Field, s State) bool {
	st, ok := v.status[f]
	if !ok {
		return false
	}
	v.check(f, s)
	st.touched = true
	return len(st.violations) > 0
}

// Invalid reports whether f was touched and has violations.
func (v *Validator) Invalid(f Field) bool {
	st, ok := v.status[f]
	return ok && st.touched && len(st.violations) > 0
}

// Violations returns a copy of f's current violations.
func (v *Validator) Violations(f Field) []Violation {
	st, ok := v.status[f]
	if !ok || len(st.violations) == 0 {
		return nil
	}
	return append([]Violation(nil), st.violations...)
}

// MaxLength returns the limit of f's MaxLength rule.
func (v *Validator) MaxLength(f Field) (int, bool) {
	for _, r := range v.rules[f] {
		if r.name == RuleMaxLength {
			return r.limit, true
		}
	}
	return 0, false
}

// CharactersLeft returns how many more code points f accepts. The result is
// negative once the limit is exceeded and 0 for fields without a limit.
func (v *Validator) CharactersLeft(f Field, s State) int {
	limit, ok := v.MaxLength(f)
	if !ok {
		return 0
	}
	str, _ := s.Value(f).(string)
	return limit - utf8.RuneCountInString(str)
}
