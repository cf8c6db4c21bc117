package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when saving a character under a name another
// saved character already uses.
var ErrCharacterNameTaken = errors.New("character name already taken")

// CharacterRepository persists characters, their base stats, proficiencies and
// equipped item instances. Totals are never stored.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Save inserts c when c.ID is zero and replaces the stored row and its children
// otherwise. Everything is written in one transaction.
//
// Precondition: c.Name must be non-empty; c.Level must be in [1, 20].
// Postcondition: c.ID, c.CreatedAt and c.UpdatedAt are set on success. Returns
// ErrCharacterNameTaken on a duplicate name and ErrCharacterNotFound when updating an
// ID that does not exist.
func (r *CharacterRepository) Save(ctx context.Context, c *character.Character) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if c.ID == 0 {
		err = tx.QueryRow(ctx, `
			INSERT INTO characters
				(name, player_name, race, class, background, alignment, level, experience, health)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING id, created_at, updated_at`,
			c.Name, c.PlayerName, c.Race, c.Class, c.Background, c.Alignment.String(),
			c.Level, c.Experience, c.Health,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	} else {
		err = tx.QueryRow(ctx, `
			UPDATE characters SET
				name = $2, player_name = $3, race = $4, class = $5, background = $6,
				alignment = $7, level = $8, experience = $9, health = $10, updated_at = NOW()
			WHERE id = $1
			RETURNING created_at, updated_at`,
			c.ID, c.Name, c.PlayerName, c.Race, c.Class, c.Background, c.Alignment.String(),
			c.Level, c.Experience, c.Health,
		).Scan(&c.CreatedAt, &c.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCharacterNotFound
		}
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrCharacterNameTaken
		}
		return fmt.Errorf("writing character: %w", err)
	}

	if err := writeChildren(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing character: %w", err)
	}
	return nil
}

// writeChildren replaces the stat, proficiency and equipment rows of c.
func writeChildren(ctx context.Context, tx pgx.Tx, c *character.Character) error {
	b := &pgx.Batch{}
	b.Queue(`DELETE FROM character_stats WHERE character_id = $1`, c.ID)
	b.Queue(`DELETE FROM character_proficiencies WHERE character_id = $1`, c.ID)
	b.Queue(`DELETE FROM character_equipment WHERE character_id = $1`, c.ID)
	for id, base := range c.Bases {
		b.Queue(`INSERT INTO character_stats (character_id, stat, base) VALUES ($1,$2,$3)`,
			c.ID, id.Key(), base)
	}
	for id, p := range c.Proficiencies {
		if p == stat.NotProficient {
			continue
		}
		b.Queue(`INSERT INTO character_proficiencies (character_id, stat, proficiency) VALUES ($1,$2,$3)`,
			c.ID, id.Key(), p.String())
	}
	for i, eq := range c.Equipment {
		b.Queue(`INSERT INTO character_equipment (character_id, position, instance_id, item_id) VALUES ($1,$2,$3,$4)`,
			c.ID, i, eq.InstanceID, eq.ItemID)
	}

	br := tx.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			if isDuplicateKeyError(err) {
				return fmt.Errorf("writing children of character %d: item instance saved on another character: %w", c.ID, err)
			}
			return fmt.Errorf("writing children of character %d: %w", c.ID, err)
		}
	}
	return br.Close()
}

// GetByID retrieves a character with its base stats, proficiencies and equipment.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx, `
		SELECT id, name, player_name, race, class, background, alignment,
		       level, experience, health, created_at, updated_at
		FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	if err := r.loadChildren(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every saved character ordered by name. Bases, proficiencies and
// equipment are not loaded.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, player_name, race, class, background, alignment,
		       level, experience, health, created_at, updated_at
		FROM characters ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// Delete removes a character and, by cascade, its children.
//
// Postcondition: Returns ErrCharacterNotFound if no row was deleted.
func (r *CharacterRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	var alignment string
	if err := row.Scan(
		&c.ID, &c.Name, &c.PlayerName, &c.Race, &c.Class, &c.Background, &alignment,
		&c.Level, &c.Experience, &c.Health, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a, err := ruleset.ParseAlignment(alignment)
	if err != nil {
		return nil, fmt.Errorf("character %d: %w", c.ID, err)
	}
	c.Alignment = a
	return &c, nil
}

func (r *CharacterRepository) loadChildren(ctx context.Context, c *character.Character) error {
	c.Bases = make(map[stat.ID]float64)
	c.Proficiencies = make(map[stat.ID]stat.Proficiency)
	c.Equipment = nil

	rows, err := r.db.Query(ctx, `SELECT stat, base FROM character_stats WHERE character_id = $1`, c.ID)
	if err != nil {
		return fmt.Errorf("querying stats: %w", err)
	}
	for rows.Next() {
		var key string
		var base float64
		if err := rows.Scan(&key, &base); err != nil {
			rows.Close()
			return fmt.Errorf("scanning stat row: %w", err)
		}
		id, err := stat.Parse(key)
		if err != nil {
			rows.Close()
			return fmt.Errorf("character %d: %w", c.ID, err)
		}
		c.Bases[id] = base
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT stat, proficiency FROM character_proficiencies WHERE character_id = $1`, c.ID)
	if err != nil {
		return fmt.Errorf("querying proficiencies: %w", err)
	}
	for rows.Next() {
		var key, level string
		if err := rows.Scan(&key, &level); err != nil {
			rows.Close()
			return fmt.Errorf("scanning proficiency row: %w", err)
		}
		id, err := stat.Parse(key)
		if err != nil {
			rows.Close()
			return fmt.Errorf("character %d: %w", c.ID, err)
		}
		p, err := stat.ParseProficiency(level)
		if err != nil {
			rows.Close()
			return fmt.Errorf("character %d: %w", c.ID, err)
		}
		c.Proficiencies[id] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading proficiencies: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT instance_id, item_id FROM character_equipment
		WHERE character_id = $1 ORDER BY position ASC`, c.ID)
	if err != nil {
		return fmt.Errorf("querying equipment: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var eq character.EquippedItem
		if err := rows.Scan(&eq.InstanceID, &eq.ItemID); err != nil {
			return fmt.Errorf("scanning equipment row: %w", err)
		}
		c.Equipment = append(c.Equipment, eq)
	}
	return rows.Err()
}

// isDuplicateKeyError reports whether err is a PostgreSQL unique_violation (23505).
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
