package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Field names a filterable listing attribute.
type Field string

// Filterable fields.
const (
	FieldBrand     Field = "brand"
	FieldType      Field = "type"
	FieldColor     Field = "color"
	FieldLocation  Field = "location"
	FieldPrice     Field = "price"
	FieldModelYear Field = "model_year"
	FieldCondition Field = "condition"
)

// Operator is the comparison a predicate applies.
type Operator string

// Supported operators.
const (
	// OpContainsFold is a case-insensitive substring match.
	OpContainsFold Operator = "contains_fold"
	// OpEqualFold is a case-insensitive whole-value match.
	OpEqualFold Operator = "equal_fold"
	// OpEqual is an exact match.
	OpEqual Operator = "equal"
	// OpLessOrEqual is an inclusive upper bound.
	OpLessOrEqual Operator = "lte"
)

// Predicate is one search constraint. Predicates are combined with AND.
type Predicate struct {
	Field Field
	Op    Operator
	Value any
}

// SearchFilter is the optional filter set accepted by Search. Zero values
// impose no restriction.
type SearchFilter struct {
	Brand     string           `json:"brand,omitempty"`
	Type      string           `json:"type,omitempty"`
	Color     string           `json:"color,omitempty"`
	Location  string           `json:"location,omitempty"`
	MaxPrice  *decimal.Decimal `json:"maxPrice,omitempty"`
	ModelYear *int             `json:"modelYear,omitempty"`
	Condition string           `json:"condition,omitempty"`
}

// Predicates converts the filter into its tagged predicate list.
func (f SearchFilter) Predicates() []Predicate {
	var preds []Predicate
	if f.Brand != "" {
		preds = append(preds, Predicate{Field: FieldBrand, Op: OpContainsFold, Value: f.Brand})
	}
	if f.Type != "" {
		preds = append(preds, Predicate{Field: FieldType, Op: OpEqualFold, Value: f.Type})
	}
	if f.Color != "" {
		preds = append(preds, Predicate{Field: FieldColor, Op: OpContainsFold, Value: f.Color})
	}
	if f.Location != "" {
		preds = append(preds, Predicate{Field: FieldLocation, Op: OpContainsFold, Value: f.Location})
	}
	if f.MaxPrice != nil {
		preds = append(preds, Predicate{Field: FieldPrice, Op: OpLessOrEqual, Value: *f.MaxPrice})
	}
	if f.ModelYear != nil {
		preds = append(preds, Predicate{Field: FieldModelYear, Op: OpEqual, Value: *f.ModelYear})
	}
	if f.Condition != "" {
		preds = append(preds, Predicate{Field: FieldCondition, Op: OpEqual, Value: f.Condition})
	}
	return preds
}

func (f Field) isText() bool {
	switch f {
	case FieldBrand, FieldType, FieldColor, FieldLocation, FieldCondition:
		return true
	}
	return false
}

// Validate checks that the field is known and that operator and value type
// fit it.
func (p Predicate) Validate() error {
	invalid := NewValidationError(ReasonInvalidFilter, string(p.Field))
	switch {
	case p.Field.isText():
		if _, ok := p.Value.(string); !ok {
			return invalid
		}
		if p.Op != OpContainsFold && p.Op != OpEqualFold && p.Op != OpEqual {
			return invalid
		}
	case p.Field == FieldPrice:
		if _, ok := p.Value.(decimal.Decimal); !ok {
			return invalid
		}
		if p.Op != OpEqual && p.Op != OpLessOrEqual {
			return invalid
		}
	case p.Field == FieldModelYear:
		if _, ok := p.Value.(int); !ok {
			return invalid
		}
		if p.Op != OpEqual && p.Op != OpLessOrEqual {
			return invalid
		}
	default:
		return invalid
	}
	return nil
}

// Matches reports whether l satisfies p. An invalid predicate matches nothing.
func (p Predicate) Matches(l *Listing) bool {
	if p.Validate() != nil {
		return false
	}
	switch p.Field {
	case FieldPrice:
		v := p.Value.(decimal.Decimal)
		if p.Op == OpLessOrEqual {
			return l.Price.LessThanOrEqual(v)
		}
		return l.Price.Equal(v)
	case FieldModelYear:
		v := p.Value.(int)
		if p.Op == OpLessOrEqual {
			return l.ModelYear <= v
		}
		return l.ModelYear == v
	}

	got := textField(l, p.Field)
	want := p.Value.(string)
	switch p.Op {
	case OpContainsFold:
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	case OpEqualFold:
		return strings.EqualFold(got, want)
	default:
		return got == want
	}
}

// MatchesAll reports whether l satisfies every predicate.
func MatchesAll(preds []Predicate, l *Listing) bool {
	for _, p := range preds {
		if !p.Matches(l) {
			return false
		}
	}
	return true
}

func textField(l *Listing, f Field) string {
	switch f {
	case FieldBrand:
		return l.Brand
	case FieldType:
		return l.Type
	case FieldColor:
		return l.Color
	case FieldLocation:
		return l.Location
	case FieldCondition:
		return l.Condition
	}
	return ""
}
