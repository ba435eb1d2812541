package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/estate/listings/internal/domain/listing"
)

// ListingModel is the persistence model of the cards table.
type ListingModel struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Name         string `gorm:"type:varchar(255);not null;default:''"`
	District     string `gorm:"type:varchar(100);not null;default:'';index"`
	Construction string `gorm:"type:varchar(50);not null;default:''"`
	Class        string `gorm:"type:varchar(50);not null;default:''"`
	FinishState  string `gorm:"type:varchar(100);not null;default:''"`

	Floors        int     `gorm:"not null;default:0"`
	CeilingHeight float64 `gorm:"not null;default:0"`
	Yard          string  `gorm:"type:text;not null;default:''"`
	Facade        string  `gorm:"type:text;not null;default:''"`
	Windows       string  `gorm:"type:text;not null;default:''"`
	HasParking    bool    `gorm:"not null;default:false"`
	HasCommerce   bool    `gorm:"not null;default:false"`

	PaymentMethods []string        `gorm:"type:text;serializer:json"`
	Price          decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	FloorPlanURL   string          `gorm:"type:text;not null;default:''"`
	Ready          bool            `gorm:"not null;default:false"`
	Discount       int             `gorm:"not null;default:0"`
	HandoverDate   *time.Time
	Comment        string     `gorm:"type:text;not null;default:''"`
	CreatedAt      *time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt      time.Time

	SchoolDistance       float64 `gorm:"not null;default:0"`
	KindergartenDistance float64 `gorm:"not null;default:0"`
	MallDistance         float64 `gorm:"not null;default:0"`
}

// TableName keeps the collection name the listings have always lived in.
func (ListingModel) TableName() string {
	return "cards"
}

// ToDomain converts the model to a domain listing
func (m *ListingModel) ToDomain() listing.Listing {
	return listing.Listing{
		ID:                   m.ID,
		Name:                 m.Name,
		District:             listing.District(m.District),
		Construction:         listing.Construction(m.Construction),
		Class:                listing.Class(m.Class),
		FinishState:          listing.FinishState(m.FinishState),
		Floors:               m.Floors,
		CeilingHeight:        m.CeilingHeight,
		Yard:                 m.Yard,
		Facade:               m.Facade,
		Windows:              m.Windows,
		HasParking:           m.HasParking,
		HasCommerce:          m.HasCommerce,
		PaymentMethods:       listing.NewPaymentSet(m.PaymentMethods...),
		Price:                m.Price,
		FloorPlanURL:         m.FloorPlanURL,
		Ready:                m.Ready,
		Discount:             m.Discount,
		HandoverDate:         utc(m.HandoverDate),
		Comment:              m.Comment,
		CreatedAt:            utc(m.CreatedAt),
		SchoolDistance:       m.SchoolDistance,
		KindergartenDistance: m.KindergartenDistance,
		MallDistance:         m.MallDistance,
	}
}

// ListingModelFromDomain converts a domain listing to its model
func ListingModelFromDomain(l *listing.Listing) *ListingModel {
	payments := make([]string, len(l.PaymentMethods))
	copy(payments, l.PaymentMethods)
	return &ListingModel{
		ID:                   l.ID,
		Name:                 l.Name,
		District:             string(l.District),
		Construction:         string(l.Construction),
		Class:                string(l.Class),
		FinishState:          string(l.FinishState),
		Floors:               l.Floors,
		CeilingHeight:        l.CeilingHeight,
		Yard:                 l.Yard,
		Facade:               l.Facade,
		Windows:              l.Windows,
		HasParking:           l.HasParking,
		HasCommerce:          l.HasCommerce,
		PaymentMethods:       payments,
		Price:                l.Price,
		FloorPlanURL:         l.FloorPlanURL,
		Ready:                l.Ready,
		Discount:             l.Discount,
		HandoverDate:         l.HandoverDate,
		Comment:              l.Comment,
		CreatedAt:            l.CreatedAt,
		SchoolDistance:       l.SchoolDistance,
		KindergartenDistance: l.KindergartenDistance,
		MallDistance:         l.MallDistance,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
