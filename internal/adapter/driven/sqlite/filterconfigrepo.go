package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
	"github.com/ericfisherdev/reviewdeck/internal/domain/port/driven"
)

// configVersion is the schema version written with every saved record. Bump
// when the on-disk shape of the configuration changes.
const configVersion = 1

// Compile-time interface satisfaction check.
var _ driven.FilterConfigStore = (*FilterConfigRepo)(nil)

// FilterConfigRepo is the SQLite implementation of the FilterConfigStore
// port. The configuration is a single versioned row, replaced wholesale on
// every save so persistence stays atomic.
type FilterConfigRepo struct {
	db *DB
}

// NewFilterConfigRepo creates a new FilterConfigRepo.
func NewFilterConfigRepo(db *DB) *FilterConfigRepo {
	return &FilterConfigRepo{db: db}
}

// Save replaces the stored configuration wholesale.
func (r *FilterConfigRepo) Save(ctx context.Context, cfg model.FilterConfiguration) error {
	orgs, err := encodeSet(cfg.Organizations)
	if err != nil {
		return fmt.Errorf("encode organizations: %w", err)
	}
	repos, err := encodeSet(cfg.Repositories)
	if err != nil {
		return fmt.Errorf("encode repositories: %w", err)
	}
	teams, err := encodeSet(cfg.Teams)
	if err != nil {
		return fmt.Errorf("encode teams: %w", err)
	}

	const query = `
		INSERT OR REPLACE INTO filter_config (id, version, organizations, repositories, teams, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, configVersion, orgs, repos, teams); err != nil {
		return fmt.Errorf("save filter config: %w", err)
	}
	return nil
}

// Load returns the stored configuration, or nil when none has been saved.
// A record with an unrecognized version is ignored rather than misread.
func (r *FilterConfigRepo) Load(ctx context.Context) (*model.FilterConfiguration, error) {
	const query = `SELECT version, organizations, repositories, teams FROM filter_config WHERE id = 1`

	var version int
	var orgs, repos, teams string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&version, &orgs, &repos, &teams)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load filter config: %w", err)
	}

	if version != configVersion {
		return nil, nil
	}

	cfg := &model.FilterConfiguration{}
	if cfg.Organizations, err = decodeSet(orgs); err != nil {
		return nil, fmt.Errorf("decode organizations: %w", err)
	}
	if cfg.Repositories, err = decodeSet(repos); err != nil {
		return nil, fmt.Errorf("decode repositories: %w", err)
	}
	if cfg.Teams, err = decodeSet(teams); err != nil {
		return nil, fmt.Errorf("decode teams: %w", err)
	}

	return cfg, nil
}

func encodeSet(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeSet(data string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}
