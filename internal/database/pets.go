package database

import (
	"context"
	"errors"
	"fmt"

	"Walkmate_V0.1/internal/assistant"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const getPetProfile = `-- name: GetPetProfile :one
SELECT pet_name, pet_breed, pet_age, pet_weight
FROM pets
WHERE pet_id = $1
`

// Querier is the subset of pgxpool.Pool the stores need.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// petRow mirrors the nullable columns of the pets table.
type petRow struct {
	Name   pgtype.Text
	Breed  pgtype.Text
	Age    pgtype.Int4
	Weight pgtype.Numeric
}

// PetStore reads pet profiles from Postgres. It implements assistant.ProfileStore.
type PetStore struct {
	db Querier
}

// NewPetStore builds a store on top of a pool or any compatible querier.
func NewPetStore(db Querier) *PetStore {
	return &PetStore{db: db}
}

// GetProfile returns the profile of one pet, or assistant.ErrProfileNotFound.
func (s *PetStore) GetProfile(ctx context.Context, petID string) (assistant.Profile, error) {
	var row petRow
	err := s.db.QueryRow(ctx, getPetProfile, petID).Scan(&row.Name, &row.Breed, &row.Age, &row.Weight)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assistant.Profile{}, fmt.Errorf("pet %s: %w", petID, assistant.ErrProfileNotFound)
		}
		return assistant.Profile{}, fmt.Errorf("query pet %s: %w", petID, err)
	}
	return row.toProfile()
}

// toProfile converts a row into the assistant's snapshot, rejecting impossible values.
func (r petRow) toProfile() (assistant.Profile, error) {
	if !r.Name.Valid {
		return assistant.Profile{}, errors.New("pet row has no name")
	}

	weight, err := NumericToFloat(r.Weight)
	if err != nil {
		return assistant.Profile{}, fmt.Errorf("pet weight: %w", err)
	}
	if weight <= 0 {
		return assistant.Profile{}, fmt.Errorf("pet weight must be positive, got %.2f", weight)
	}

	age := int(r.Age.Int32)
	if !r.Age.Valid || age < 0 {
		age = 0
	}

	return assistant.Profile{
		Name:     r.Name.String,
		Category: r.Breed.String,
		Age:      age,
		Weight:   weight,
	}, nil
}

// NumericToFloat converts a pgtype.Numeric into a float64.
func NumericToFloat(n pgtype.Numeric) (float64, error) {
	if !n.Valid {
		return 0, errors.New("numeric is NULL")
	}
	f, err := n.Float64Value()
	if err != nil {
		return 0, err
	}
	if !f.Valid {
		return 0, errors.New("numeric is not a finite number")
	}
	return f.Float64, nil
}
