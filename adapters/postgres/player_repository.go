package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"playerscout/adapters/db/postgres/migrations"
	"playerscout/domain/roster"
	"playerscout/internal/errors"
	"playerscout/models"
	"playerscout/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// PlayerRepositoryImpl implements PlayerRepository for PostgreSQL
type PlayerRepositoryImpl struct {
	db *sqlx.DB
}

var _ ports.PlayerRepository = (*PlayerRepositoryImpl)(nil)

// NewPlayerRepository creates a new PostgreSQL player repository
func NewPlayerRepository(db *sqlx.DB) *PlayerRepositoryImpl {
	return &PlayerRepositoryImpl{db: db}
}

// Migrate applies any pending schema migrations
func (r *PlayerRepositoryImpl) Migrate(ctx context.Context) error {
	if _, err := migrations.NewMigrator(r.db.DB).Up(ctx); err != nil {
		return errors.DatabaseError("failed to migrate players schema", err)
	}
	return nil
}

// playerRow mirrors the players table; JSON columns are kept raw until decoded
type playerRow struct {
	ID                 int64     `db:"id"`
	Name               string    `db:"name"`
	NameKey            string    `db:"name_key"`
	GeneralInfo        []byte    `db:"general_info"`
	CurrentSeasonStats []byte    `db:"current_season_stats"`
	ScoutingReport     []byte    `db:"scouting_report"`
	PlayerOverview     []byte    `db:"player_overview"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (row playerRow) record() (*models.PlayerRecord, error) {
	record := &models.PlayerRecord{}
	if err := json.Unmarshal(row.GeneralInfo, &record.GeneralInfo); err != nil {
		return nil, fmt.Errorf("player %d general_info: %w", row.ID, err)
	}
	if len(row.CurrentSeasonStats) > 0 {
		if err := json.Unmarshal(row.CurrentSeasonStats, &record.CurrentSeasonStats); err != nil {
			return nil, fmt.Errorf("player %d current_season_stats: %w", row.ID, err)
		}
	}
	if len(row.ScoutingReport) > 0 {
		if err := json.Unmarshal(row.ScoutingReport, &record.ScoutingReport); err != nil {
			return nil, fmt.Errorf("player %d scouting_report: %w", row.ID, err)
		}
	}
	if len(row.PlayerOverview) > 0 && string(row.PlayerOverview) != "null" {
		record.PlayerOverview = &models.PlayerOverview{}
		if err := json.Unmarshal(row.PlayerOverview, record.PlayerOverview); err != nil {
			return nil, fmt.Errorf("player %d player_overview: %w", row.ID, err)
		}
	}
	return record, nil
}

// newPlayerRow encodes a record into column values
func newPlayerRow(record *models.PlayerRecord) (playerRow, error) {
	name := strings.TrimSpace(record.GeneralInfo.Name)
	row := playerRow{Name: name, NameKey: roster.Fold(name)}
	var err error
	if row.GeneralInfo, err = json.Marshal(record.GeneralInfo); err != nil {
		return row, err
	}
	stats := record.CurrentSeasonStats
	if stats == nil {
		stats = map[string]models.LeagueStats{}
	}
	if row.CurrentSeasonStats, err = json.Marshal(stats); err != nil {
		return row, err
	}
	report := record.ScoutingReport
	if report == nil {
		report = []models.ScoutingMetric{}
	}
	if row.ScoutingReport, err = json.Marshal(report); err != nil {
		return row, err
	}
	if record.PlayerOverview != nil {
		if row.PlayerOverview, err = json.Marshal(record.PlayerOverview); err != nil {
			return row, err
		}
	}
	return row, nil
}

// FindByName narrows candidates on the folded name key, then applies the roster match policy
func (r *PlayerRepositoryImpl) FindByName(ctx context.Context, name string) (*models.PlayerRecord, error) {
	query := strings.TrimSpace(name)
	key := roster.Fold(query)
	if key == "" {
		return nil, errors.InvalidInput("player name is required")
	}

	var rows []playerRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, name_key, general_info, current_season_stats, scouting_report, player_overview, created_at, updated_at
		FROM players
		WHERE name_key LIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY name_key
	`, roster.EscapeLike(key))
	if err != nil {
		return nil, errors.DatabaseError("failed to search players", err)
	}

	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Name
	}
	idx, ok := roster.BestMatch(names, query)
	if !ok {
		return nil, errors.NotFound("player")
	}

	record, err := rows[idx].record()
	if err != nil {
		return nil, errors.DatabaseError("failed to decode player", err)
	}
	return record, nil
}

// Upsert inserts a record or replaces the stored one with the same folded name
func (r *PlayerRepositoryImpl) Upsert(ctx context.Context, record *models.PlayerRecord) error {
	if record == nil || strings.TrimSpace(record.GeneralInfo.Name) == "" {
		return errors.InvalidInput("player record requires general_info.name")
	}

	row, err := newPlayerRow(record)
	if err != nil {
		return errors.Wrap(err, "failed to encode player")
	}

	var overview sql.NullString
	if row.PlayerOverview != nil {
		overview = sql.NullString{String: string(row.PlayerOverview), Valid: true}
	}

	// JSON columns travel as text so the driver does not encode them as bytea
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO players (name, name_key, general_info, current_season_stats, scouting_report, player_overview)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6::jsonb)
		ON CONFLICT (name_key) DO UPDATE SET
			name = EXCLUDED.name,
			general_info = EXCLUDED.general_info,
			current_season_stats = EXCLUDED.current_season_stats,
			scouting_report = EXCLUDED.scouting_report,
			player_overview = EXCLUDED.player_overview,
			updated_at = NOW()
	`, row.Name, row.NameKey, string(row.GeneralInfo), string(row.CurrentSeasonStats), string(row.ScoutingReport), overview)
	if err != nil {
		return errors.DatabaseError("failed to upsert player", err)
	}
	return nil
}

// Count returns the number of stored players
func (r *PlayerRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM players`); err != nil {
		return 0, errors.DatabaseError("failed to count players", err)
	}
	return count, nil
}
