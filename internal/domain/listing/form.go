package listing

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Form is the raw admin input for a new listing. Numeric and date fields
// hold text exactly as typed, or the literal of a JSON number; Build
// coerces them. Form is a value: edits produce a new Form.
type Form struct {
	Name                 string     `json:"name"`
	District             string     `json:"district"`
	Construction         string     `json:"construction"`
	Class                string     `json:"class"`
	FinishState          string     `json:"finish_state"`
	Floors               FormValue  `json:"floors"`
	CeilingHeight        FormValue  `json:"ceiling_height"`
	HasParking           bool       `json:"has_parking"`
	Yard                 string     `json:"yard"`
	Facade               string     `json:"facade"`
	Windows              string     `json:"windows"`
	HasCommerce          bool       `json:"has_commerce"`
	Payments             PaymentSet `json:"payment_methods"`
	Price                FormValue  `json:"price"`
	FloorPlanURL         string     `json:"floor_plan_url"`
	Ready                bool       `json:"ready"`
	Discount             FormValue  `json:"discount"`
	HandoverDate         FormValue  `json:"handover_date"`
	Comment              string     `json:"comment"`
	SchoolDistance       FormValue  `json:"school_distance"`
	KindergartenDistance FormValue  `json:"kindergarten_distance"`
	MallDistance         FormValue  `json:"mall_distance"`
}

// FormValue is a form field as typed. It decodes from a JSON string or from
// any other JSON literal, so a number sent unquoted is kept as its text
// and coerced like typed input.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
	default:
		*v = FormValue(data)
	}
	return nil
}

// DefaultForm is the state the admin form starts in and returns to after
// a successful submit.
func DefaultForm() Form {
	return Form{
		District:     string(KnownDistricts[0]),
		Construction: string(ConstructionMonolith),
		Class:        string(ClassComfortPlus),
		FinishState:  string(FinishRough),
		Payments:     PaymentSet{},
	}
}

// TogglePayment returns a copy with method added or removed.
func (f Form) TogglePayment(method string) Form {
	f.Payments = f.Payments.Toggle(method)
	return f
}

// Build coerces the form into a listing stamped with createdAt. Malformed
// or empty numbers become zero and a blank or unparsable handover date
// becomes nil; the submission is never rejected.
func (f Form) Build(createdAt time.Time) Listing {
	created := createdAt.UTC()
	return Listing{
		Name:                 strings.TrimSpace(f.Name),
		District:             District(strings.TrimSpace(f.District)),
		Construction:         Construction(strings.TrimSpace(f.Construction)),
		Class:                Class(strings.TrimSpace(f.Class)),
		FinishState:          FinishState(strings.TrimSpace(f.FinishState)),
		Floors:               ClampFloors(CoerceNumber(string(f.Floors))),
		CeilingHeight:        CoerceNumber(string(f.CeilingHeight)),
		HasParking:           f.HasParking,
		Yard:                 f.Yard,
		Facade:               f.Facade,
		Windows:              f.Windows,
		HasCommerce:          f.HasCommerce,
		PaymentMethods:       NewPaymentSet(f.Payments...),
		Price:                CoercePrice(string(f.Price)),
		FloorPlanURL:         strings.TrimSpace(f.FloorPlanURL),
		Ready:                f.Ready,
		Discount:             ClampPercent(CoerceNumber(string(f.Discount))),
		HandoverDate:         CoerceDate(string(f.HandoverDate)),
		Comment:              strings.TrimSpace(f.Comment),
		CreatedAt:            &created,
		SchoolDistance:       CoerceNumber(string(f.SchoolDistance)),
		KindergartenDistance: CoerceNumber(string(f.KindergartenDistance)),
		MallDistance:         CoerceNumber(string(f.MallDistance)),
	}
}

// CoerceNumber parses s as a decimal number, yielding 0 for empty or
// malformed text.
func CoerceNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CoercePrice parses s as a non-negative price, yielding zero otherwise.
func CoercePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// MaxFloors is the highest floor count a listing may carry.
const MaxFloors = 200

// ClampFloors truncates v and limits it to 0..MaxFloors.
func ClampFloors(v float64) int {
	switch {
	case v <= 0:
		return 0
	case v >= MaxFloors:
		return MaxFloors
	default:
		return int(v)
	}
}

// ClampPercent truncates v and limits it to 0..100.
func ClampPercent(v float64) int {
	switch {
	case v <= 0:
		return 0
	case v >= 100:
		return 100
	default:
		return int(v)
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	time.RFC3339,
}

// CoerceDate parses a date input value. Blank or unparsable text yields
// nil, never a zero time.
func CoerceDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
