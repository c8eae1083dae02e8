package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []State
	resp  Response
	err   error
}

func (s *fakeSubmitter) Submit(ctx context.Context, st State) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, st)
	return s.resp, s.err
}

func (s *fakeSubmitter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// blockingSubmitter holds each call until release is closed.
type blockingSubmitter struct {
	started chan struct{}
	release chan struct{}
	resp    Response
	err     error
	calls   int
	mu      sync.Mutex
}

func newBlockingSubmitter(resp Response, err error) *blockingSubmitter {
	return &blockingSubmitter{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		resp:    resp,
		err:     err,
	}
}

func (s *blockingSubmitter) Submit(ctx context.Context, st State) (Response, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.started <- struct{}{}
	<-s.release
	return s.resp, s.err
}

func validState() State {
	return State{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Terms:     true,
		Type:      SubscriptionStarter,
	}
}

func TestSubmitRequiredFieldsMissing(t *testing.T) {
	sub := &fakeSubmitter{resp: Response{Success: true}}
	f := New(sub)

	outcome, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if outcome != OutcomeInvalid {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeInvalid)
	}
	if sub.count() != 0 {
		t.Errorf("API called %d times, want 0", sub.count())
	}

	snap := f.Snapshot()
	if !snap.IsError || snap.ErrorHeader != MsgInvalidFields {
		t.Errorf("IsError=%v header=%q", snap.IsError, snap.ErrorHeader)
	}
	want := []FieldError{
		{Field: "firstName"},
		{Field: "lastName"},
		{Field: "email"},
		{Field: "terms"},
		{Field: "type"},
	}
	if diff := cmp.Diff(want, snap.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitSingleMissingField(t *testing.T) {
	tests := []struct {
		name   string
		field  Field
		mutate func(*State)
	}{
		{"first name", FieldFirstName, func(s *State) { s.FirstName = "" }},
		{"blank first name", FieldFirstName, func(s *State) { s.FirstName = "   " }},
		{"last name", FieldLastName, func(s *State) { s.LastName = "" }},
		{"blank last name", FieldLastName, func(s *State) { s.LastName = "\t" }},
		{"email", FieldEmail, func(s *State) { s.Email = "" }},
		{"terms", FieldTerms, func(s *State) { s.Terms = false }},
		{"type", FieldType, func(s *State) { s.Type = "" }},
	}

	for _, tt := range tests {
		field := tt.field
		t.Run(tt.name, func(t *testing.T) {
			st := validState()
			tt.mutate(&st)

			sub := &fakeSubmitter{resp: Response{Success: true}}
			f := New(sub)
			f.Update(st)

			outcome, _ := f.Submit(context.Background())
			if outcome != OutcomeInvalid || sub.count() != 0 {
				t.Fatalf("outcome=%q calls=%d", outcome, sub.count())
			}
			if diff := cmp.Diff([]FieldError{{Field: string(field)}}, f.Snapshot().Errors); diff != "" {
				t.Errorf("Errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubmitSuccess(t *testing.T) {
	sub := &fakeSubmitter{resp: Response{Success: true}}
	f := New(sub)
	f.Update(validState())

	outcome, err := f.Submit(context.Background())
	if err != nil || outcome != OutcomeSubmitted {
		t.Fatalf("Submit() = %q, %v", outcome, err)
	}
	if diff := cmp.Diff([]State{validState()}, sub.calls); diff != "" {
		t.Errorf("posted state mismatch (-want +got):\n%s", diff)
	}

	snap := f.Snapshot()
	if !snap.Submitted || snap.IsError || snap.Submitting {
		t.Errorf("Submitted=%v IsError=%v Submitting=%v", snap.Submitted, snap.IsError, snap.Submitting)
	}

	if f.Update(State{}) || f.State() != validState() {
		t.Error("state should be frozen after success")
	}
	if _, err := f.Submit(context.Background()); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("second Submit() error = %v, want ErrAlreadySubmitted", err)
	}
	if sub.count() != 1 {
		t.Errorf("API called %d times, want 1", sub.count())
	}
}

func TestSubmitSuccessClearsPreviousErrors(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("connection refused")}
	f := New(sub)
	f.Update(validState())

	if outcome, _ := f.Submit(context.Background()); outcome != OutcomeTransportError {
		t.Fatalf("outcome = %q", outcome)
	}
	sub.err = nil
	sub.resp = Response{Success: true}

	if outcome, _ := f.Submit(context.Background()); outcome != OutcomeSubmitted {
		t.Fatalf("outcome = %q", outcome)
	}
	snap := f.Snapshot()
	if snap.IsError || len(snap.Errors) != 0 || snap.ErrorHeader != "" {
		t.Errorf("errors not cleared: %+v", snap)
	}
}

func TestSubmitServerRejected(t *testing.T) {
	serverErrors := []FieldError{{Field: "email", Message: "bad"}}
	sub := &fakeSubmitter{resp: Response{Success: false, Errors: serverErrors}}
	f := New(sub)
	f.Update(validState())

	outcome, err := f.Submit(context.Background())
	if err != nil || outcome != OutcomeRejected {
		t.Fatalf("Submit() = %q, %v", outcome, err)
	}

	snap := f.Snapshot()
	if !snap.IsError || snap.ErrorHeader != MsgInvalidFields || snap.Submitted {
		t.Errorf("IsError=%v header=%q Submitted=%v", snap.IsError, snap.ErrorHeader, snap.Submitted)
	}
	if diff := cmp.Diff(serverErrors, snap.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
	if !f.IsFieldInvalid(FieldEmail) {
		t.Error("email should be invalid after server rejection")
	}
	if f.IsFieldInvalid(FieldFirstName) {
		t.Error("firstName should be valid")
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	tests := []struct {
		name string
		sub  *fakeSubmitter
	}{
		{"network error", &fakeSubmitter{err: errors.New("dial tcp: connection refused")}},
		{"rejection without errors", &fakeSubmitter{resp: Response{Success: false}}},
	}

	want := []FieldError{{Field: "", Message: MsgGeneralMessage}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.sub)
			f.Update(validState())

			outcome, err := f.Submit(context.Background())
			if err != nil || outcome != OutcomeTransportError {
				t.Fatalf("Submit() = %q, %v", outcome, err)
			}
			snap := f.Snapshot()
			if !snap.IsError || snap.ErrorHeader != MsgGeneral {
				t.Errorf("IsError=%v header=%q", snap.IsError, snap.ErrorHeader)
			}
			if diff := cmp.Diff(want, snap.Errors); diff != "" {
				t.Errorf("Errors mismatch (-want +got):\n%s", diff)
			}
			if snap.Submitting {
				t.Error("Submitting should be released")
			}
		})
	}
}

func TestSubmittingDuringRequestWindow(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		err  error
		want Outcome
	}{
		{"success", Response{Success: true}, nil, OutcomeSubmitted},
		{"failure", Response{}, errors.New("timeout"), OutcomeTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := newBlockingSubmitter(tt.resp, tt.err)
			f := New(sub)
			f.Update(validState())

			if f.Snapshot().Submitting {
				t.Fatal("Submitting before submit")
			}

			done := make(chan Outcome, 1)
			go func() {
				outcome, _ := f.Submit(context.Background())
				done <- outcome
			}()

			<-sub.started
			if !f.Snapshot().Submitting {
				t.Error("Submitting should be true while the request is in flight")
			}

			if _, err := f.Submit(context.Background()); !errors.Is(err, ErrSubmitInProgress) {
				t.Errorf("concurrent Submit() error = %v, want ErrSubmitInProgress", err)
			}
			if f.Update(State{}) {
				t.Error("Update should be refused while submitting")
			}

			close(sub.release)
			if got := <-done; got != tt.want {
				t.Errorf("outcome = %q, want %q", got, tt.want)
			}
			if f.Snapshot().Submitting {
				t.Error("Submitting should be false after the response")
			}
			if sub.calls != 1 {
				t.Errorf("API called %d times, want 1", sub.calls)
			}
		})
	}
}

func TestBlur(t *testing.T) {
	f := New(&fakeSubmitter{})

	if !f.Blur(FieldEmail) {
		t.Fatal("empty email should be invalid on blur")
	}
	f.Blur(FieldEmail)
	snap := f.Snapshot()
	if diff := cmp.Diff([]FieldError{{Field: "email"}}, snap.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
	if !snap.IsError || snap.ErrorHeader != MsgInvalidFields {
		t.Errorf("IsError=%v header=%q", snap.IsError, snap.ErrorHeader)
	}
	if f.IsFieldInvalid(FieldFirstName) {
		t.Error("untouched firstName should not be invalid")
	}

	st := f.State()
	st.Email = "ada@example.com"
	f.Update(st)
	if f.Blur(FieldEmail) {
		t.Fatal("valid email should pass on blur")
	}
	snap = f.Snapshot()
	if snap.IsError || len(snap.Errors) != 0 {
		t.Errorf("email entry not removed: %+v", snap.Errors)
	}
	if f.IsFieldInvalid(FieldEmail) {
		t.Error("email should be valid")
	}
}

func TestBlurRemovesServerErrorsForField(t *testing.T) {
	sub := &fakeSubmitter{resp: Response{Errors: []FieldError{
		{Field: "email", Message: "already registered"},
		{Field: "lastName", Message: "too short"},
	}}}
	f := New(sub)
	f.Update(validState())
	f.Submit(context.Background())

	f.Blur(FieldEmail)

	want := []FieldError{{Field: "lastName", Message: "too short"}}
	if diff := cmp.Diff(want, f.Snapshot().Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateDoesNotTouch(t *testing.T) {
	f := New(&fakeSubmitter{})
	f.Update(State{Email: "not-an-email"})

	if f.IsFieldInvalid(FieldEmail) {
		t.Error("Update should not mark fields touched")
	}
	f.Blur(FieldEmail)
	if !f.IsFieldInvalid(FieldEmail) {
		t.Error("malformed email should be invalid after blur")
	}
}

func TestAdditionalInfoLength(t *testing.T) {
	tests := []struct {
		name      string
		info      string
		invalid   bool
		remaining int
	}{
		{"empty", "", false, 1000},
		{"at limit", strings.Repeat("a", 1000), false, 0},
		{"over limit", strings.Repeat("a", 1001), true, -1},
		{"multibyte at limit", strings.Repeat("é", 1000), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(&fakeSubmitter{resp: Response{Success: true}})
			st := validState()
			st.AdditionalInfo = tt.info
			f.Update(st)

			if got := f.CharactersLeft(FieldAdditionalInfo); got != tt.remaining {
				t.Errorf("CharactersLeft() = %d, want %d", got, tt.remaining)
			}
			if got := f.Blur(FieldAdditionalInfo); got != tt.invalid {
				t.Errorf("Blur() invalid = %v, want %v", got, tt.invalid)
			}
			if got := f.Snapshot().Remaining[FieldAdditionalInfo]; got != tt.remaining {
				t.Errorf("Snapshot().Remaining = %d, want %d", got, tt.remaining)
			}
		})
	}
}

func TestCharactersLeftWithoutLimit(t *testing.T) {
	f := New(&fakeSubmitter{})
	f.Update(validState())
	if got := f.CharactersLeft(FieldFirstName); got != 0 {
		t.Errorf("CharactersLeft(firstName) = %d, want 0", got)
	}
}

func TestWithRules(t *testing.T) {
	f := New(&fakeSubmitter{resp: Response{Success: true}}, WithRules(map[Field][]Rule{
		FieldEmail: {Required()},
	}))
	f.Update(State{Email: "x"})

	if outcome, _ := f.Submit(context.Background()); outcome != OutcomeSubmitted {
		t.Errorf("outcome = %q, want submitted with relaxed rules", outcome)
	}
}
