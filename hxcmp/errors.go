package hxcmp

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/signupform/lib/encoding"
)

// Sentinel errors for component operations.
var (
	ErrNotFound         = errors.New("hxcmp: resource not found")
	ErrDecryptFailed    = errors.New("hxcmp: parameter decryption failed")
	ErrSignatureInvalid = errors.New("hxcmp: signature verification failed")
	ErrInvalidFormat    = errors.New("hxcmp: invalid parameter format")
	ErrHydrationFailed  = errors.New("hxcmp: hydration failed")
	ErrMethodNotAllowed = errors.New("hxcmp: method not allowed")
)

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

// IsBadRequest reports whether err was caused by the client's parameters.
func IsBadRequest(err error) bool {
	return IsDecryptionError(err) || errors.Is(err, ErrInvalidFormat)
}

// WrapDecodeError maps encoding package errors onto hxcmp sentinels.
// Unknown errors pass through unchanged.
func WrapDecodeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, encoding.ErrInvalidFormat):
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, encoding.ErrDecryptFailed):
		return fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return err
}

// ErrorComponent renders a minimal error block in place of a component
// whose hydration failed. The message is HTML-escaped.
func ErrorComponent(err error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, werr := io.WriteString(w, `<div class="hxcmp-error">Hydration error: `+html.EscapeString(err.Error())+`</div>`)
		return werr
	})
}
