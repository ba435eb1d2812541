package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	listingapp "github.com/estate/listings/internal/application/listing"
	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/infrastructure/auth"
	"github.com/estate/listings/internal/infrastructure/config"
	"github.com/estate/listings/internal/infrastructure/persistence/memory"
)

func created(day int) *time.Time {
	t := time.Date(2026, 5, day, 9, 0, 0, 0, time.UTC)
	return &t
}

func newTestApp(t *testing.T) (*app, *memory.ListingRepository) {
	t.Helper()
	repo := memory.NewListingRepository(
		listing.Listing{
			ID: "north", Name: "ЖК Северный", District: listing.DistrictExpo,
			Price: decimal.NewFromInt(4_500_000), Ready: true, CreatedAt: created(1),
			PaymentMethods: listing.PaymentSet{listing.PaymentMortgage},
		},
		listing.Listing{
			ID: "south", Name: "ЖК Южный", District: listing.DistrictTuran,
			Price: decimal.NewFromInt(9_000_000), HasParking: true, CreatedAt: created(2),
		},
	)
	log := zaptest.NewLogger(t)
	svc := listingapp.NewService(repo, listingapp.NewView(0), log)
	svc.SetGenerator(listingapp.NewGenerator(7))

	return &app{
		cfg: &config.Config{
			JWT:   config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Issuer: "listings", Expiration: time.Hour},
			Admin: config.AdminConfig{Username: "admin"},
		},
		log:     log,
		service: svc,
	}, repo
}

func run(t *testing.T, a *app, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestList_Table(t *testing.T) {
	a, _ := newTestApp(t)

	out, err := run(t, a, "", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "ЖК Северный")
	assert.Contains(t, out, "ЖК Южный")
	assert.Contains(t, out, "2 of 2 listings")
	// newest first
	assert.Less(t, strings.Index(out, "ЖК Южный"), strings.Index(out, "ЖК Северный"))
}

func TestList_FiltersAsJSON(t *testing.T) {
	a, _ := newTestApp(t)

	out, err := run(t, a, "", "list", "--json", "--max-price", "5000000", "--payment", listing.PaymentMortgage)
	require.NoError(t, err)

	var res listingapp.BrowseResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Total)
	require.Equal(t, 1, res.Matched)
	assert.Equal(t, "north", res.Items[0].ID)
}

func TestShowAndComment(t *testing.T) {
	a, repo := newTestApp(t)

	_, err := run(t, a, "", "comment", "south", "  звонить после 18:00  ")
	require.NoError(t, err)

	stored, err := repo.FindByID(t.Context(), "south")
	require.NoError(t, err)
	assert.Equal(t, "звонить после 18:00", stored.Comment)

	out, err := run(t, a, "", "show", "south")
	require.NoError(t, err)
	var got listing.Listing
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "звонить после 18:00", got.Comment)

	_, err = run(t, a, "", "show", "missing")
	assert.ErrorIs(t, err, listingapp.ErrListingNotFound)
}

func TestSeedDeletePurge(t *testing.T) {
	a, repo := newTestApp(t)

	out, err := run(t, a, "", "seed", "--count", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 of 3 listings (0 failed)")
	assert.Equal(t, 5, repo.Len())

	_, err = run(t, a, "", "delete", "north")
	require.NoError(t, err)
	assert.Equal(t, 4, repo.Len())

	_, err = run(t, a, "", "purge")
	require.Error(t, err)
	assert.Equal(t, 4, repo.Len())

	out, err = run(t, a, "", "purge", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 4 of 4 listings (0 failed)")
	assert.Zero(t, repo.Len())
}

func TestSeed_RejectsOversizedCount(t *testing.T) {
	a, repo := newTestApp(t)

	_, err := run(t, a, "", "seed", "-n", "501")
	require.Error(t, err)
	assert.Equal(t, 2, repo.Len())
}

func TestToken(t *testing.T) {
	a, _ := newTestApp(t)

	out, err := run(t, a, "", "token")
	require.NoError(t, err)

	claims, err := auth.NewJWTService(a.cfg.JWT).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestToken_RequiresSecret(t *testing.T) {
	a, _ := newTestApp(t)
	a.cfg.JWT.Secret = ""

	_, err := run(t, a, "", "token")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	a, _ := newTestApp(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{name: "argument", args: []string{"hash-password", "s3cret"}},
		{name: "stdin", stdin: "s3cret\n", args: []string{"hash-password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, a, tt.stdin, tt.args...)
			require.NoError(t, err)
			hash := strings.TrimSpace(out)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
		})
	}

	_, err := run(t, a, "", "hash-password")
	assert.Error(t, err)
}
