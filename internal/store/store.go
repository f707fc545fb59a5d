package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/models"
)

// Store is the persisted server configuration repository. Supervisors only
// ever touch their own row; the running flag is last-write-wins.
type Store struct {
	db *sql.DB
}

// New creates a store backed by the given database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const serverColumns = `id, name, install_path, game_port, query_port, rcon_port, beacon_port, rcon_password, extra_args, is_running, created_at, updated_at`

// Find returns the config for one server id.
func (s *Store) Find(id int64) (models.ServerConfig, error) {
	row := s.db.QueryRow(`SELECT `+serverColumns+` FROM servers WHERE id = ?`, id)
	cfg, err := scanServer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ServerConfig{}, errs.Wrap(errs.ErrNotFound, "server %d", id)
	}
	if err != nil {
		return models.ServerConfig{}, fmt.Errorf("failed to load server %d: %w", id, err)
	}
	return cfg, nil
}

// FindAll returns every configured server ordered by id.
func (s *Store) FindAll() ([]models.ServerConfig, error) {
	rows, err := s.db.Query(`SELECT ` + serverColumns + ` FROM servers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	defer rows.Close()

	var servers []models.ServerConfig
	for rows.Next() {
		cfg, err := scanServer(rows)
		if err != nil {
			return nil, err
		}
		servers = append(servers, cfg)
	}
	return servers, rows.Err()
}

// Create inserts a new server config and fills in its assigned id.
func (s *Store) Create(cfg *models.ServerConfig) error {
	now := time.Now().UTC()
	result, err := s.db.Exec(`
		INSERT INTO servers (name, install_path, game_port, query_port, rcon_port, beacon_port, rcon_password, extra_args, is_running, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, cfg.Name, cfg.InstallPath, cfg.GamePort, cfg.QueryPort, cfg.RconPort, cfg.BeaconPort, cfg.RconPassword, cfg.ExtraArgs, now, now)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new server id: %w", err)
	}
	cfg.ID = id
	cfg.IsRunning = false
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	return nil
}

// Update rewrites the mutable fields of a server config. The running flag is
// owned by the supervisor and not touched here.
func (s *Store) Update(cfg models.ServerConfig) error {
	result, err := s.db.Exec(`
		UPDATE servers
		SET name = ?, install_path = ?, game_port = ?, query_port = ?, rcon_port = ?, beacon_port = ?, rcon_password = ?, extra_args = ?, updated_at = ?
		WHERE id = ?
	`, cfg.Name, cfg.InstallPath, cfg.GamePort, cfg.QueryPort, cfg.RconPort, cfg.BeaconPort, cfg.RconPassword, cfg.ExtraArgs, time.Now().UTC(), cfg.ID)
	if err != nil {
		return fmt.Errorf("failed to update server %d: %w", cfg.ID, err)
	}
	return ensureRowFound(result, cfg.ID)
}

// Delete removes a server config row. Callers must stop the server first.
func (s *Store) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM servers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete server %d: %w", id, err)
	}
	return ensureRowFound(result, id)
}

// SetRunning persists the supervisor's running/stopped transition.
func (s *Store) SetRunning(id int64, running bool) error {
	flag := 0
	if running {
		flag = 1
	}
	result, err := s.db.Exec(`UPDATE servers SET is_running = ?, updated_at = ? WHERE id = ?`, flag, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set running flag for server %d: %w", id, err)
	}
	return ensureRowFound(result, id)
}

// ResetRunningFlags clears every persisted running flag. Called at startup:
// detached game processes can outlive the manager, but a fresh manager does
// not rediscover or re-adopt them, so any set flag is stale either way.
func (s *Store) ResetRunningFlags() error {
	if _, err := s.db.Exec(`UPDATE servers SET is_running = 0 WHERE is_running != 0`); err != nil {
		return fmt.Errorf("failed to reset running flags: %w", err)
	}
	return nil
}

func ensureRowFound(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.Wrap(errs.ErrNotFound, "server %d", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanServer(row rowScanner) (models.ServerConfig, error) {
	var cfg models.ServerConfig
	var running int
	err := row.Scan(&cfg.ID, &cfg.Name, &cfg.InstallPath, &cfg.GamePort, &cfg.QueryPort,
		&cfg.RconPort, &cfg.BeaconPort, &cfg.RconPassword, &cfg.ExtraArgs, &running,
		&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return models.ServerConfig{}, err
	}
	cfg.IsRunning = running != 0
	return cfg, nil
}
