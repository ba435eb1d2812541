package listing

import (
	"fmt"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/estate/listings/internal/domain/listing"
)

// Generator produces synthetic listings for seeding. It is safe for
// concurrent use.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewGenerator creates a generator. A zero seed draws a random one; any
// other seed makes the sequence reproducible.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Listing returns one random listing created at now.
func (g *Generator) Listing(now time.Time) listing.Listing {
	g.mu.Lock()
	defer g.mu.Unlock()

	f := g.faker
	created := now.UTC()
	handover := created.Add(time.Duration(f.IntRange(0, 364)) * 24 * time.Hour)

	construction := listing.ConstructionBrick
	if f.Bool() {
		construction = listing.ConstructionMonolith
	}

	payments := listing.PaymentSet{}
	for _, p := range listing.KnownPaymentOptions {
		if f.Float64() > 0.7 {
			payments = append(payments, p)
		}
	}

	return listing.Listing{
		Name:                 fmt.Sprintf("Проект %d", f.IntRange(0, 999)),
		District:             pick(f, listing.KnownDistricts),
		Construction:         construction,
		Class:                pick(f, listing.KnownClasses),
		FinishState:          pick(f, listing.KnownFinishStates),
		Floors:               f.IntRange(5, 24),
		CeilingHeight:        float64(f.IntRange(0, 4)) + 2.5,
		HasParking:           f.Bool(),
		Yard:                 fmt.Sprintf("Двор %d", f.IntRange(0, 9)),
		Facade:               fmt.Sprintf("Фасад %d", f.IntRange(0, 9)),
		Windows:              fmt.Sprintf("Окна %d", f.IntRange(0, 9)),
		HasCommerce:          f.Bool(),
		PaymentMethods:       payments,
		Price:                decimal.NewFromInt(int64(f.IntRange(5_000_000, 54_999_999))),
		Ready:                f.Bool(),
		Discount:             f.IntRange(0, 29),
		HandoverDate:         &handover,
		Comment:              fmt.Sprintf("Комментарий %d", f.IntRange(0, 999)),
		CreatedAt:            &created,
		SchoolDistance:       float64(f.IntRange(5, 24)),
		KindergartenDistance: float64(f.IntRange(5, 24)),
		MallDistance:         float64(f.IntRange(5, 24)),
	}
}

func pick[T any](f *gofakeit.Faker, values []T) T {
	return values[f.IntRange(0, len(values)-1)]
}
