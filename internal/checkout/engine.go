package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nmaisuradze/storefront/internal/cart"
	"github.com/nmaisuradze/storefront/internal/gateway"
	pkgerrors "github.com/nmaisuradze/storefront/pkg/errors"
	"github.com/nmaisuradze/storefront/pkg/logger"
)

type cartSource interface {
	Snapshot() cart.Snapshot
	Clear()
}

type submitter interface {
	Checkout(ctx context.Context, in gateway.CheckoutInput) (*gateway.Receipt, error)
}

// Engine owns the checkout form: field values, the merged error set from
// local and remote validation, and the submission sequence. Local errors
// clear on the next change to their field; remote errors persist until the
// next submission replaces the whole set.
type Engine struct {
	mu               sync.Mutex
	form             Form
	fieldErrors      pkgerrors.FieldErrors
	checkoutErr      string
	submitting       bool
	confirmationOpen bool
	receipt          *gateway.Receipt

	store   cartSource
	gateway submitter
	logg    *logger.Logger
}

// NewEngine builds the checkout engine on top of the shared cart store.
func NewEngine(store cartSource, gw submitter, logg *logger.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if gw == nil {
		return nil, fmt.Errorf("checkout gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Engine{
		store:       store,
		gateway:     gw,
		logg:        logg,
		fieldErrors: pkgerrors.FieldErrors{},
	}, nil
}

// Form returns a copy of the current field values.
func (e *Engine) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// PrefillEmail seeds the email field from the signed-in user, without
// overwriting anything the user already typed.
func (e *Engine) PrefillEmail(email string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if strings.TrimSpace(e.form.Email) == "" {
		e.form.Email = email
	}
}

// HandleChange records a keystroke: the field value updates, the field's
// error clears, and any checkout-level error clears.
func (e *Engine) HandleChange(field, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.setField(field, value) {
		return
	}
	delete(e.fieldErrors, field)
	e.checkoutErr = ""
}

// HandleBlur revalidates the single field that lost focus and replaces its
// error entry.
func (e *Engine) HandleBlur(field string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg, bad := ValidateField(e.form, field)
	if bad {
		e.fieldErrors[field] = msg
	} else {
		delete(e.fieldErrors, field)
	}
}

// Validate runs every field validator and replaces the whole error set, so
// stale errors from a previous remote attempt never linger into a new pass.
func (e *Engine) Validate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validateLocked()
}

func (e *Engine) validateLocked() bool {
	errs := ValidateForm(e.form)
	if errs == nil {
		errs = pkgerrors.FieldErrors{}
	}
	e.fieldErrors = errs
	return len(errs) == 0
}

// FieldError returns the message currently attached to a field, local or
// remote, empty when the field is clean.
func (e *Engine) FieldError(field string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fieldErrors[field]
}

// FieldErrors returns a copy of the current error set.
func (e *Engine) FieldErrors() pkgerrors.FieldErrors {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := pkgerrors.FieldErrors{}
	for k, v := range e.fieldErrors {
		out[k] = v
	}
	return out
}

// CheckoutError is the banner message above the form, empty when none.
func (e *Engine) CheckoutError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checkoutErr
}

func (e *Engine) Submitting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitting
}

func (e *Engine) ConfirmationOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirmationOpen
}

// Receipt returns the confirmation from the last successful submission.
func (e *Engine) Receipt() *gateway.Receipt {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.receipt
}

// Submit runs the checkout sequence: full local validation, the empty-cart
// guard, then the remote call. Any failure before the call prevents network
// activity entirely. Returns true only when the order was placed.
func (e *Engine) Submit(ctx context.Context) bool {
	e.mu.Lock()
	if e.submitting {
		e.mu.Unlock()
		return false
	}
	if !e.validateLocked() {
		e.mu.Unlock()
		return false
	}
	snap := e.store.Snapshot()
	if !snap.Loaded || snap.Cart.IsEmpty() {
		e.checkoutErr = pkgerrors.MetadataFor(pkgerrors.CodeEmptyCart).UserMessage
		e.mu.Unlock()
		return false
	}
	e.submitting = true
	e.checkoutErr = ""
	input := gateway.CheckoutInput{
		Name:    strings.TrimSpace(e.form.Name),
		Surname: strings.TrimSpace(e.form.Surname),
		Email:   strings.TrimSpace(e.form.Email),
		ZipCode: strings.TrimSpace(e.form.ZipCode),
		Address: strings.TrimSpace(e.form.Address),
	}
	e.mu.Unlock()

	receipt, err := e.gateway.Checkout(ctx, input)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitting = false

	if err != nil {
		e.applyFailureLocked(ctx, err)
		return false
	}

	e.receipt = receipt
	e.confirmationOpen = true
	e.logg.Info(e.logg.WithField(ctx, "order_id", receipt.OrderID), "checkout succeeded")
	return true
}

// applyFailureLocked merges a submission failure into the error model.
// A structured validation failure replaces the field errors wholesale; the
// server's messages are newer than anything local. Everything else becomes
// a single checkout-level message.
func (e *Engine) applyFailureLocked(ctx context.Context, err error) {
	typed := pkgerrors.As(err)
	if typed != nil && typed.Code() == pkgerrors.CodeValidation && len(typed.Fields()) > 0 {
		fields := pkgerrors.FieldErrors{}
		for k, v := range typed.Fields() {
			fields[k] = v
		}
		e.fieldErrors = fields
		e.checkoutErr = typed.Message()
		e.logg.Warn(ctx, "checkout rejected by server validation")
		return
	}

	code := pkgerrors.CodeOf(err)
	msg := pkgerrors.MetadataFor(code).UserMessage
	if typed != nil && typed.Code() == pkgerrors.CodeAPI && typed.Message() != "" {
		msg = typed.Message()
	}
	e.checkoutErr = msg
	e.logg.Error(ctx, "checkout failed", err)
}

// CloseConfirmation dismisses the confirmation and clears the shared cart
// store; the completed order's cart is gone server-side.
func (e *Engine) CloseConfirmation() {
	e.mu.Lock()
	e.confirmationOpen = false
	e.mu.Unlock()
	e.store.Clear()
}

func (e *Engine) setField(field, value string) bool {
	switch field {
	case FieldName:
		e.form.Name = value
	case FieldSurname:
		e.form.Surname = value
	case FieldEmail:
		e.form.Email = value
	case FieldAddress:
		e.form.Address = value
	case FieldZipCode:
		e.form.ZipCode = value
	default:
		return false
	}
	return true
}
