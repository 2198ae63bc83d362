package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// profileRowID is the fixed primary key of the single-tenant record.
const profileRowID = 1

type profileRecord struct {
	bun.BaseModel `bun:"table:patient_profiles"`

	ID        int64    `bun:"id,pk"`
	Name      string   `bun:"name,notnull"`
	HomeCity  string   `bun:"home_city,notnull"`
	ZipCode   string   `bun:"zip_code,notnull"`
	Insurance string   `bun:"insurance,notnull"`
	Allergies []string `bun:"allergies,array"`
	Timezone  string   `bun:"timezone"`
}

// BunStore persists the profile as a single Postgres row, upserted on every
// save.
type BunStore struct {
	db *bun.DB
}

// NewBunStore connects to Postgres with the given DSN and ensures the
// profile table exists.
func NewBunStore(ctx context.Context, dsn string) (*BunStore, error) {
	if dsn == "" {
		return nil, errors.New("profile: postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if _, err := db.NewCreateTable().
		Model((*profileRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("profile: create table: %w", err)
	}

	return &BunStore{db: db}, nil
}

func (s *BunStore) Load(ctx context.Context) (PatientProfile, error) {
	rec := new(profileRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("id = ?", profileRowID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PatientProfile{}, ErrProfileNotFound
		}
		return PatientProfile{}, fmt.Errorf("profile: select: %w", err)
	}

	allergies := rec.Allergies
	if allergies == nil {
		allergies = []string{}
	}
	return PatientProfile{
		Name:      rec.Name,
		HomeCity:  rec.HomeCity,
		ZipCode:   rec.ZipCode,
		Insurance: rec.Insurance,
		Allergies: allergies,
		Timezone:  rec.Timezone,
	}, nil
}

func (s *BunStore) Save(ctx context.Context, p PatientProfile) error {
	rec := &profileRecord{
		ID:        profileRowID,
		Name:      p.Name,
		HomeCity:  p.HomeCity,
		ZipCode:   p.ZipCode,
		Insurance: p.Insurance,
		Allergies: p.Allergies,
		Timezone:  p.Timezone,
	}

	_, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("home_city = EXCLUDED.home_city").
		Set("zip_code = EXCLUDED.zip_code").
		Set("insurance = EXCLUDED.insurance").
		Set("allergies = EXCLUDED.allergies").
		Set("timezone = EXCLUDED.timezone").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("profile: upsert: %w", err)
	}
	return nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}
