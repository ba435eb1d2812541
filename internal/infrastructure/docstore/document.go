package docstore

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estate/listings/internal/domain/listing"
)

// Document field names as stored in the cards collection.
const (
	fieldID           = "_id"
	fieldName         = "Название"
	fieldDistrict     = "Район"
	fieldConstruction = "Тип_строительства"
	fieldClass        = "Класс"
	fieldFinishState  = "Состояние"
	fieldFloors       = "Этажность"
	fieldCeiling      = "Потолок"
	fieldParking      = "Паркинг"
	fieldYard         = "Двор"
	fieldFacade       = "Фасад"
	fieldWindows      = "Окна"
	fieldCommerce     = "Коммерция"
	fieldPayments     = "Способы"
	fieldPrice        = "Цена"
	fieldFloorPlan    = "Шахматка"
	fieldReady        = "готов"
	fieldDiscount     = "скидка"
	fieldHandover     = "срок_сдачи"
	fieldComment      = "comment"
	fieldCreatedAt    = "createdAt"
	fieldSchool       = "Ближайшая_школа"
	fieldKindergarten = "Ближайший_садик"
	fieldMall         = "ТРЦ"
)

// encodeListing renders l as a cards document under id. Numbers are written
// as BSON doubles/ints and dates as BSON datetimes.
func encodeListing(id primitive.ObjectID, l *listing.Listing) bson.D {
	payments := make(bson.A, 0, len(l.PaymentMethods))
	for _, p := range l.PaymentMethods {
		payments = append(payments, p)
	}

	return bson.D{
		{Key: fieldID, Value: id},
		{Key: fieldName, Value: l.Name},
		{Key: fieldDistrict, Value: string(l.District)},
		{Key: fieldConstruction, Value: string(l.Construction)},
		{Key: fieldClass, Value: string(l.Class)},
		{Key: fieldFinishState, Value: string(l.FinishState)},
		{Key: fieldFloors, Value: l.Floors},
		{Key: fieldCeiling, Value: l.CeilingHeight},
		{Key: fieldParking, Value: l.HasParking},
		{Key: fieldYard, Value: l.Yard},
		{Key: fieldFacade, Value: l.Facade},
		{Key: fieldWindows, Value: l.Windows},
		{Key: fieldCommerce, Value: l.HasCommerce},
		{Key: fieldPayments, Value: payments},
		{Key: fieldPrice, Value: l.Price.InexactFloat64()},
		{Key: fieldFloorPlan, Value: l.FloorPlanURL},
		{Key: fieldReady, Value: l.Ready},
		{Key: fieldDiscount, Value: l.Discount},
		{Key: fieldHandover, Value: dateValue(l.HandoverDate)},
		{Key: fieldComment, Value: l.Comment},
		{Key: fieldCreatedAt, Value: dateValue(l.CreatedAt)},
		{Key: fieldSchool, Value: l.SchoolDistance},
		{Key: fieldKindergarten, Value: l.KindergartenDistance},
		{Key: fieldMall, Value: l.MallDistance},
	}
}

func dateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return primitive.NewDateTimeFromTime(*t)
}

// decodeListing converts a raw cards document. Older documents hold numbers
// as strings and may lack fields entirely; both decode to zero values rather
// than failing the whole fetch.
func decodeListing(doc bson.M) listing.Listing {
	return listing.Listing{
		ID:                   idString(doc[fieldID]),
		Name:                 asString(doc[fieldName]),
		District:             listing.District(asString(doc[fieldDistrict])),
		Construction:         listing.Construction(asString(doc[fieldConstruction])),
		Class:                listing.Class(asString(doc[fieldClass])),
		FinishState:          listing.FinishState(asString(doc[fieldFinishState])),
		Floors:               listing.ClampFloors(asFloat(doc[fieldFloors])),
		CeilingHeight:        asFloat(doc[fieldCeiling]),
		HasParking:           asBool(doc[fieldParking]),
		Yard:                 asString(doc[fieldYard]),
		Facade:               asString(doc[fieldFacade]),
		Windows:              asString(doc[fieldWindows]),
		HasCommerce:          asBool(doc[fieldCommerce]),
		PaymentMethods:       asPayments(doc[fieldPayments]),
		Price:                asPrice(doc[fieldPrice]),
		FloorPlanURL:         asString(doc[fieldFloorPlan]),
		Ready:                asBool(doc[fieldReady]),
		Discount:             listing.ClampPercent(asFloat(doc[fieldDiscount])),
		HandoverDate:         asTime(doc[fieldHandover]),
		Comment:              asString(doc[fieldComment]),
		CreatedAt:            asTime(doc[fieldCreatedAt]),
		SchoolDistance:       asFloat(doc[fieldSchool]),
		KindergartenDistance: asFloat(doc[fieldKindergarten]),
		MallDistance:         asFloat(doc[fieldMall]),
	}
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return ""
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case int32, int64, float64:
		return strconv.FormatFloat(asFloat(s), 'f', -1, 64)
	default:
		return ""
	}
}

func asFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case primitive.Decimal128:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return 0
		}
		f = d.InexactFloat64()
	case string:
		return listing.CoerceNumber(n)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func asPrice(v any) decimal.Decimal {
	switch n := v.(type) {
	case string:
		return listing.CoercePrice(n)
	case primitive.Decimal128:
		return listing.CoercePrice(n.String())
	default:
		f := asFloat(v)
		if f <= 0 {
			return decimal.Zero
		}
		return decimal.NewFromFloat(f)
	}
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}

func asPayments(v any) listing.PaymentSet {
	arr, ok := v.(bson.A)
	if !ok {
		return listing.PaymentSet{}
	}
	methods := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			methods = append(methods, s)
		}
	}
	return listing.NewPaymentSet(methods...)
}

func asTime(v any) *time.Time {
	var t time.Time
	switch d := v.(type) {
	case primitive.DateTime:
		t = d.Time()
	case time.Time:
		t = d
	case primitive.Timestamp:
		t = time.Unix(int64(d.T), 0)
	case string:
		return listing.CoerceDate(d)
	default:
		return nil
	}
	t = t.UTC()
	return &t
}
