package docstore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estate/listings/internal/domain/listing"
)

func TestDecodeListing_LegacyStringNumbers(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := bson.M{
		fieldID:           oid,
		fieldName:         "Проект 42",
		fieldDistrict:     "Бостандыкский",
		fieldFloors:       "12",
		fieldCeiling:      "2.9",
		fieldPrice:        "18500000",
		fieldDiscount:     "250",
		fieldSchool:       "7",
		fieldKindergarten: "abc",
		fieldMall:         int32(11),
		fieldParking:      "true",
		fieldPayments:     bson.A{"Ипотека", "", "Ипотека", "Рассрочка", 5},
		fieldHandover:     "2025-03-01",
	}

	l := decodeListing(doc)

	assert.Equal(t, oid.Hex(), l.ID)
	assert.Equal(t, listing.District("Бостандыкский"), l.District)
	assert.Equal(t, 12, l.Floors)
	assert.InDelta(t, 2.9, l.CeilingHeight, 1e-9)
	assert.True(t, decimal.NewFromInt(18500000).Equal(l.Price))
	assert.Equal(t, 100, l.Discount)
	assert.Equal(t, 7.0, l.SchoolDistance)
	assert.Zero(t, l.KindergartenDistance)
	assert.Equal(t, 11.0, l.MallDistance)
	assert.True(t, l.HasParking)
	assert.Equal(t, listing.PaymentSet{"Ипотека", "Рассрочка"}, l.PaymentMethods)
	require.NotNil(t, l.HandoverDate)
	assert.Equal(t, "2025-03-01", l.HandoverDate.Format("2006-01-02"))
	assert.Nil(t, l.CreatedAt)
}

func TestDecodeListing_MissingFields(t *testing.T) {
	l := decodeListing(bson.M{})

	assert.Empty(t, l.ID)
	assert.Empty(t, l.Name)
	assert.True(t, l.Price.IsZero())
	assert.Empty(t, l.PaymentMethods)
	assert.Nil(t, l.HandoverDate)
	assert.Nil(t, l.CreatedAt)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	created := time.Date(2024, 4, 2, 8, 15, 0, 0, time.UTC)
	in := listing.Listing{
		Name:           "ЖК Алатау",
		District:       "Медеуский",
		Construction:   listing.ConstructionMonolith,
		Class:          listing.ClassBusiness,
		FinishState:    listing.FinishPreFinish,
		Floors:         14,
		CeilingHeight:  3,
		HasCommerce:    true,
		PaymentMethods: listing.NewPaymentSet("Наличные"),
		Price:          decimal.NewFromInt(42000000),
		Discount:       10,
		Comment:        "первая линия",
		CreatedAt:      &created,
		MallDistance:   1.5,
	}
	oid := primitive.NewObjectID()

	raw, err := bson.Marshal(encodeListing(oid, &in))
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	out := decodeListing(doc)
	assert.Equal(t, oid.Hex(), out.ID)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Class, out.Class)
	assert.Equal(t, in.Floors, out.Floors)
	assert.True(t, out.HasCommerce)
	assert.Equal(t, in.PaymentMethods, out.PaymentMethods)
	assert.True(t, in.Price.Equal(out.Price))
	assert.Equal(t, in.Discount, out.Discount)
	assert.Equal(t, in.Comment, out.Comment)
	assert.Nil(t, out.HandoverDate)
	require.NotNil(t, out.CreatedAt)
	assert.True(t, created.Equal(*out.CreatedAt))
}

func TestAsTime(t *testing.T) {
	when := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want *time.Time
	}{
		{"bson datetime", primitive.NewDateTimeFromTime(when), &when},
		{"go time", when.In(time.FixedZone("X", 3600)), &when},
		{"timestamp", primitive.Timestamp{T: uint32(when.Unix())}, &when},
		{"date string", "2023-01-01", &when},
		{"garbage", "soon", nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := asTime(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}
