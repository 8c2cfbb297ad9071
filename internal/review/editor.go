package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notecraft/notecraft/internal/models"
)

// State of the review editor
type State string

const (
	StateEditable  State = "editable"
	StateConfirmed State = "confirmed"
)

// Field names a scalar text field of ProductMetadata
type Field string

const (
	FieldCategory       Field = "product_category"
	FieldBrand          Field = "brand"
	FieldModel          Field = "model"
	FieldPriceRange     Field = "estimated_price_range"
	FieldTargetAudience Field = "target_audience"
)

// List names an editable list field of ProductMetadata
type List string

const (
	ListKeyFeatures  List = "key_features"
	ListToneKeywords List = "tone_keywords"
)

var (
	ErrLocked          = errors.New("metadata is confirmed, re-edit to change it")
	ErrUnknownField    = errors.New("unknown field")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidValue    = errors.New("invalid value")
)

// Editor holds recognized metadata while the user reviews it
type Editor struct {
	state State
	draft models.ProductMetadata
}

// New starts an editable review of meta. meta is copied.
func New(meta models.ProductMetadata) *Editor {
	return &Editor{
		state: StateEditable,
		draft: meta.Clone(),
	}
}

// State returns the current state
func (e *Editor) State() State {
	return e.state
}

// Draft returns a copy of the values being edited
func (e *Editor) Draft() models.ProductMetadata {
	return e.draft.Clone()
}

// SetField replaces a scalar text field
func (e *Editor) SetField(field Field, value string) error {
	if e.state != StateEditable {
		return ErrLocked
	}

	switch field {
	case FieldCategory:
		e.draft.ProductCategory = value
	case FieldBrand:
		e.draft.Brand = value
	case FieldModel:
		e.draft.Model = value
	case FieldPriceRange:
		e.draft.EstimatedPriceRange = value
	case FieldTargetAudience:
		e.draft.TargetAudience = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// SetConfidence replaces the confidence score
func (e *Editor) SetConfidence(value float64) error {
	if e.state != StateEditable {
		return ErrLocked
	}
	if value < 0 || value > 1 {
		return fmt.Errorf("%w: confidence must be within [0,1]", ErrInvalidValue)
	}
	e.draft.Confidence = value
	return nil
}

// AddItem appends a trimmed entry. Blank input is ignored and reports false.
func (e *Editor) AddItem(list List, value string) (bool, error) {
	if e.state != StateEditable {
		return false, ErrLocked
	}
	items, err := e.list(list)
	if err != nil {
		return false, err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	*items = append(*items, value)
	return true, nil
}

// RemoveItem deletes the entry at index, keeping the order of the rest
func (e *Editor) RemoveItem(list List, index int) error {
	if e.state != StateEditable {
		return ErrLocked
	}
	items, err := e.list(list)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	out := make([]string, 0, len(*items)-1)
	out = append(out, (*items)[:index]...)
	out = append(out, (*items)[index+1:]...)
	*items = out
	return nil
}

// Confirm locks the editor and returns a snapshot of the current values.
// Confirming again without edits returns an identical snapshot.
func (e *Editor) Confirm() models.ProductMetadata {
	e.state = StateConfirmed
	return e.draft.Clone()
}

// Reedit unlocks the editor without touching the values
func (e *Editor) Reedit() {
	e.state = StateEditable
}

func (e *Editor) list(list List) (*[]string, error) {
	switch list {
	case ListKeyFeatures:
		return &e.draft.KeyFeatures, nil
	case ListToneKeywords:
		return &e.draft.ToneKeywords, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, list)
	}
}
