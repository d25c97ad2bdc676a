package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"get-a-pet/internal/domain/pets"
)

const petColumns = `
	id, name, age, weight, color, images, available,
	owner_id, owner_name, owner_phone, owner_image,
	adopter_id, adopter_name, adopter_image,
	created_at, updated_at`

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}

	var adopterID, adopterName, adopterImage sql.NullString
	if p.HasAdopter() {
		adopterID = sql.NullString{String: p.Adopter.ID, Valid: true}
		adopterName = sql.NullString{String: p.Adopter.Name, Valid: true}
		adopterImage = sql.NullString{String: p.Adopter.Image, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		p.ID,
		p.Name,
		p.Age,
		p.Weight,
		p.Color,
		images,
		p.Available,
		p.Owner.ID,
		p.Owner.Name,
		p.Owner.Phone,
		p.Owner.Image,
		adopterID,
		adopterName,
		adopterImage,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pet: %w", err)
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) List(ctx context.Context, f pets.Filter) ([]pets.Pet, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if f.AdopterID != "" {
		args = append(args, f.AdopterID)
		where = append(where, fmt.Sprintf("adopter_id = $%d", len(args)))
	}

	q := `SELECT ` + petColumns + ` FROM pets`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}
	return r.exec(ctx, `
		UPDATE pets
		SET
			name = $2,
			age = $3,
			weight = $4,
			color = $5,
			images = $6,
			updated_at = $7
		WHERE id = $1
	`, p.ID, p.Name, p.Age, p.Weight, p.Color, images, p.UpdatedAt)
}

func (r *PetsRepo) SetAdopter(ctx context.Context, id string, a pets.AdopterSnapshot, at time.Time) error {
	return r.exec(ctx, `
		UPDATE pets
		SET adopter_id = $2, adopter_name = $3, adopter_image = $4, updated_at = $5
		WHERE id = $1
	`, id, a.ID, a.Name, a.Image, at)
}

func (r *PetsRepo) SetAvailable(ctx context.Context, id string, available bool, at time.Time) error {
	return r.exec(ctx, `
		UPDATE pets SET available = $2, updated_at = $3 WHERE id = $1
	`, id, available, at)
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM pets WHERE id = $1`, id)
}

// exec corre un UPDATE/DELETE por id y traduce 0 filas a ErrNotFound.
func (r *PetsRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("exec pets: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(s rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var images []byte
	var adopterID, adopterName, adopterImage sql.NullString

	if err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Age,
		&p.Weight,
		&p.Color,
		&images,
		&p.Available,
		&p.Owner.ID,
		&p.Owner.Name,
		&p.Owner.Phone,
		&p.Owner.Image,
		&adopterID,
		&adopterName,
		&adopterImage,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return pets.Pet{}, fmt.Errorf("decode images: %w", err)
		}
	}

	if adopterID.Valid && adopterID.String != "" {
		p.Adopter = &pets.AdopterSnapshot{
			ID:    adopterID.String,
			Name:  adopterName.String,
			Image: adopterImage.String,
		}
	}
	return p, nil
}

// images es JSONB; siempre se escribe como array (nunca null).
func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(b), nil
}
