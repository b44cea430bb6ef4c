package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
)

// selectColumns embeds the submitting user's email the way the REST backend does.
const selectColumns = "id,name,description,address,lat,lng,image,user:users(email)"

// Table lists and creates gems directly in a PostgREST table.
type Table struct {
	client *supabase.Client
	table  string
	logger *slog.Logger
}

// NewTable creates a gem source over table.
func NewTable(client *supabase.Client, table string, logger *slog.Logger) *Table {
	return &Table{client: client, table: table, logger: logger}
}

// ListGems returns every gem, most recent first.
func (t *Table) ListGems(_ context.Context) ([]domain.RawGem, error) {
	data, _, err := t.client.From(t.table).
		Select(selectColumns, "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list gems from %s: %w", t.table, err)
	}
	return decodeRows(data)
}

// CreateGem inserts g and returns the stored row, re-read with the embedded
// user when possible.
func (t *Table) CreateGem(_ context.Context, g domain.NewGem) (domain.RawGem, error) {
	data, _, err := t.client.From(t.table).
		Insert(g, false, "", "representation", "").
		Execute()
	if err != nil {
		return domain.RawGem{}, fmt.Errorf("insert gem into %s: %w", t.table, err)
	}
	rows, err := decodeRows(data)
	if err != nil {
		return domain.RawGem{}, err
	}
	if len(rows) == 0 {
		return domain.RawGem{}, errors.New("insert gem: no row returned")
	}
	created := rows[0]

	data, _, err = t.client.From(t.table).
		Select(selectColumns, "", false).
		Eq("id", string(created.ID)).
		Execute()
	if err != nil {
		t.logger.Warn("re-read of created gem failed", "gem_id", created.ID, "error", err)
		return created, nil
	}
	if full, err := decodeRows(data); err == nil && len(full) > 0 {
		return full[0], nil
	}
	return created, nil
}

func decodeRows(data []byte) ([]domain.RawGem, error) {
	var rows []domain.RawGem
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode gem rows: %w", err)
	}
	return rows, nil
}
