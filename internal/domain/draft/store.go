package draft

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/domain/pricing"
)

// DefaultMinLines is the floor a store never drops below.
const DefaultMinLines = 1

// VarianceSink receives advisory price warnings as lines are recalculated.
type VarianceSink func(index int, warning pricing.VarianceWarning)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMinLines sets the minimum line count. Values below 1 are ignored.
func WithMinLines(n int) StoreOption {
	return func(s *Store) {
		if n >= 1 {
			s.minLines = n
		}
	}
}

// WithVarianceThreshold sets the fraction a price may drift from standard cost.
func WithVarianceThreshold(threshold decimal.Decimal) StoreOption {
	return func(s *Store) {
		s.threshold = threshold
	}
}

// WithVarianceSink registers the receiver of variance warnings.
func WithVarianceSink(sink VarianceSink) StoreOption {
	return func(s *Store) {
		s.sink = sink
	}
}

// Store is the ordered line collection of a draft. Line numbers are positional.
// A Store is not safe for concurrent use.
type Store struct {
	lines     []LineItem
	minLines  int
	threshold decimal.Decimal
	sink      VarianceSink
}

// NewStore returns a store holding the minimum number of empty lines.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		minLines:  DefaultMinLines,
		threshold: pricing.DefaultVarianceThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pad()
	return s
}

// SetVarianceSink replaces the warning receiver.
func (s *Store) SetVarianceSink(sink VarianceSink) {
	s.sink = sink
}

func (s *Store) MinLines() int {
	return s.minLines
}

func (s *Store) Len() int {
	return len(s.lines)
}

// At returns a copy of the line at index.
func (s *Store) At(index int) (LineItem, bool) {
	if index < 0 || index >= len(s.lines) {
		return LineItem{}, false
	}
	return s.lines[index].clone(), true
}

// Lines returns a copy of every line in order.
func (s *Store) Lines() []LineItem {
	out := make([]LineItem, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.clone()
	}
	return out
}

// NonEmpty returns copies of the lines that would be persisted.
func (s *Store) NonEmpty() []LineItem {
	out := make([]LineItem, 0, len(s.lines))
	for _, l := range s.lines {
		if !l.IsEmpty() {
			out = append(out, l.clone())
		}
	}
	return out
}

// AllEmpty reports whether no line carries data.
func (s *Store) AllEmpty() bool {
	for _, l := range s.lines {
		if !l.IsEmpty() {
			return false
		}
	}
	return true
}

// Amounts returns the calculated amounts of every line.
func (s *Store) Amounts() []pricing.LineAmounts {
	out := make([]pricing.LineAmounts, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.Amounts
	}
	return out
}

// Append adds one empty line at the end.
func (s *Store) Append() {
	s.lines = append(s.lines, LineItem{})
}

// RemoveAt deletes the line at index unless that would go below the minimum.
func (s *Store) RemoveAt(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if len(s.lines)-1 < s.minLines {
		return NewValidationError("lines", fmt.Sprintf("must keep at least %d line(s)", s.minLines))
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	return nil
}

// ClearAt resets the line at index to empty, keeping its position.
func (s *Store) ClearAt(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.lines[index] = LineItem{}
	return nil
}

// UpdateField sets one field of one line. Quantity, price, discount and
// standard cost changes rerun the line calculator for that line.
// On error the line is left unchanged.
func (s *Store) UpdateField(index int, field string, value interface{}) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}

	line := s.lines[index]
	key := fmt.Sprintf("lines[%d].%s", index, field)

	switch field {
	case LineFieldItem, LineFieldDescription, LineFieldUOM, LineFieldVendor, LineFieldDiscount:
		str, err := ToString(value)
		if err != nil {
			return NewValidationError(key, err.Error())
		}
		switch field {
		case LineFieldItem:
			line.ItemID = str
		case LineFieldDescription:
			line.Description = str
		case LineFieldUOM:
			line.UOM = str
		case LineFieldVendor:
			line.VendorID = str
		case LineFieldDiscount:
			line.DiscountExpression = str
		}
	case LineFieldQuantity, LineFieldUnitPrice:
		num, err := ToDecimal(value)
		if err != nil {
			return NewValidationError(key, err.Error())
		}
		if num.IsNegative() {
			return NewValidationError(key, "must not be negative")
		}
		if field == LineFieldQuantity {
			line.Quantity = num
		} else {
			line.UnitPrice = num
		}
	case LineFieldStandardCost:
		if value == nil {
			line.StandardCost = nil
			break
		}
		num, err := ToDecimal(value)
		if err != nil {
			return NewValidationError(key, err.Error())
		}
		line.StandardCost = &num
	default:
		return NewValidationError(key, "is not an editable line field")
	}

	s.lines[index] = line
	if affectsAmounts(field) {
		s.recalculate(index)
	}
	return nil
}

// ReplaceAll swaps every line, recalculating each and padding with empty
// lines up to the minimum.
func (s *Store) ReplaceAll(lines []LineItem) {
	s.lines = make([]LineItem, 0, max(len(lines), s.minLines))
	for _, l := range lines {
		s.lines = append(s.lines, l.clone())
	}
	for i := range s.lines {
		s.recalculate(i)
	}
	s.pad()
}

// RecalculateAll reruns the calculator on every line.
func (s *Store) RecalculateAll() {
	for i := range s.lines {
		s.recalculate(i)
	}
}

func (s *Store) recalculate(index int) {
	line := &s.lines[index]
	line.recalculate(s.threshold)
	if line.Variance != nil && s.sink != nil {
		s.sink(index, *line.Variance)
	}
}

func (s *Store) pad() {
	for len(s.lines) < s.minLines {
		s.lines = append(s.lines, LineItem{})
	}
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.lines) {
		return NewValidationError("lines", fmt.Sprintf("index %d out of range [0,%d)", index, len(s.lines)))
	}
	return nil
}
