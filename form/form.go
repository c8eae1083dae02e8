package form

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrSubmitInProgress is returned when Submit is called while a previous
	// submit is still waiting for the API.
	ErrSubmitInProgress = errors.New("form: submit already in progress")
	// ErrAlreadySubmitted is returned once the signup has succeeded.
	ErrAlreadySubmitted = errors.New("form: already submitted")
)

// Message keys resolved by the display layer.
const (
	MsgInvalidFields  = "error.invalidFields"
	MsgGeneral        = "error.general"
	MsgGeneralMessage = "error.generalMessage"
)

// Outcome classifies a completed Submit.
type Outcome string

const (
	OutcomeInvalid        Outcome = "invalid"
	OutcomeSubmitted      Outcome = "submitted"
	OutcomeRejected       Outcome = "rejected"
	OutcomeTransportError Outcome = "transport_error"
)

// Submitter posts a signup to the remote API. Any returned error is treated
// as a transport failure.
type Submitter interface {
	Submit(ctx context.Context, s State) (Response, error)
}

// Form is the state of one signup form instance. It is safe for concurrent
// use; the lock is never held while the API call is in flight.
type Form struct {
	mu          sync.Mutex
	state       State
	validator   *Validator
	submitter   Submitter
	errors      []FieldError
	errorHeader string
	submitted   bool
	submitting  bool
	log         zerolog.Logger
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the form's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Form) {
		f.log = l
	}
}

// WithRules replaces the default rule set.
func WithRules(rules map[Field][]Rule) Option {
	return func(f *Form) {
		f.validator = NewValidator(rules)
	}
}

// New creates an empty form that submits through sub.
func New(sub Submitter, opts ...Option) *Form {
	f := &Form{
		submitter: sub,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.validator == nil {
		f.validator = NewValidator(DefaultRules())
	}
	f.validator.Evaluate(f.state)
	return f
}

// Update replaces the input values and re-evaluates every rule without
// touching any field. Input is frozen while a submit is in flight and after
// a successful submit; Update then reports false.
func (f *Form) Update(s State) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting || f.submitted {
		return false
	}
	f.state = s
	f.validator.Evaluate(s)
	return true
}

// State returns the current input values.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Blur touches field. An invalid field gets a client-side entry in the
// error list; a valid field has every entry naming it removed.
func (f *Form) Blur(field Field) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.validator.Touch(field, f.state) {
		f.removeErrors(field)
		return false
	}
	for _, e := range f.errors {
		if e.Field == string(field) {
			return true
		}
	}
	if len(f.errors) == 0 {
		f.errorHeader = MsgInvalidFields
	}
	f.errors = append(f.errors, FieldError{Field: string(field)})
	return true
}

func (f *Form) removeErrors(field Field) {
	kept := f.errors[:0]
	for _, e := range f.errors {
		if e.Field != string(field) {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	f.errors = kept
}

// Submit validates every field and, when the form is valid, posts it once.
// API and transport failures are recorded on the form rather than returned;
// the only errors are ErrSubmitInProgress and ErrAlreadySubmitted.
func (f *Form) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	switch {
	case f.submitting:
		f.mu.Unlock()
		return "", ErrSubmitInProgress
	case f.submitted:
		f.mu.Unlock()
		return "", ErrAlreadySubmitted
	}

	if f.validator.TouchAll(f.state) {
		f.errorHeader = MsgInvalidFields
		f.errors = f.errors[:0:0]
		for _, field := range Fields {
			if f.validator.Invalid(field) {
				f.errors = append(f.errors, FieldError{Field: string(field)})
			}
		}
		f.mu.Unlock()
		return OutcomeInvalid, nil
	}

	f.submitting = true
	state := f.state
	f.mu.Unlock()
	defer f.release()

	resp, err := f.submitter.Submit(ctx, state)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case err != nil:
		f.log.Warn().Err(err).Msg("signup request failed")
		f.setGeneralError()
		return OutcomeTransportError, nil
	case resp.Success:
		f.submitted = true
		f.errors = nil
		f.errorHeader = ""
		return OutcomeSubmitted, nil
	case len(resp.Errors) == 0:
		f.log.Warn().Msg("signup rejected without errors")
		f.setGeneralError()
		return OutcomeTransportError, nil
	default:
		f.errorHeader = MsgInvalidFields
		f.errors = append([]FieldError(nil), resp.Errors...)
		return OutcomeRejected, nil
	}
}

func (f *Form) release() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

func (f *Form) setGeneralError() {
	f.errorHeader = MsgGeneral
	f.errors = []FieldError{{Message: MsgGeneralMessage}}
}

// IsFieldInvalid reports whether field fails validation after being
// touched or is named by an error-list entry.
func (f *Form) IsFieldInvalid(field Field) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldInvalid(field)
}

func (f *Form) fieldInvalid(field Field) bool {
	if f.validator.Invalid(field) {
		return true
	}
	for _, e := range f.errors {
		if e.Field == string(field) {
			return true
		}
	}
	return false
}

// CharactersLeft returns the remaining length budget of field.
func (f *Form) CharactersLeft(field Field) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validator.CharactersLeft(field, f.state)
}

// Snapshot is a consistent read-only view of a form for rendering.
type Snapshot struct {
	State       State
	Errors      []FieldError
	ErrorHeader string
	IsError     bool
	Submitted   bool
	Submitting  bool
	Invalid     map[Field]bool
	Remaining   map[Field]int
}

// Snapshot copies the form's current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		State:       f.state,
		Errors:      append([]FieldError(nil), f.errors...),
		ErrorHeader: f.errorHeader,
		IsError:     len(f.errors) > 0,
		Submitted:   f.submitted,
		Submitting:  f.submitting,
		Invalid:     make(map[Field]bool, len(Fields)),
		Remaining:   make(map[Field]int),
	}
	for _, field := range Fields {
		s.Invalid[field] = f.fieldInvalid(field)
		if _, ok := f.validator.MaxLength(field); ok {
			s.Remaining[field] = f.validator.CharactersLeft(field, f.state)
		}
	}
	return s
}
