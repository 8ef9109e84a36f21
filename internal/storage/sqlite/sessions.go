package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/session"
	"github.com/aerosense/aerosense/pkg/logger"
)

// SessionStorage handles persistence of flight sessions. The reading
// sequence is stored as a JSON payload alongside the session columns:
// sessions are read and written whole, never row-per-reading.
type SessionStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewSessionStorage creates a new SQLite session storage
func NewSessionStorage(db *sql.DB, logger *logger.Logger) *SessionStorage {
	storage := &SessionStorage{
		db:     db,
		logger: logger.Named("sqlite-sessions"),
	}

	if err := storage.initDB(); err != nil {
		logger.Error("Failed to initialize session storage", Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *SessionStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			current_phase TEXT NOT NULL,
			airline TEXT,
			flight_number TEXT,
			seat TEXT,
			hydration_ml INTEGER NOT NULL DEFAULT 0,
			readings TEXT NOT NULL DEFAULT '[]',
			active INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_active ON sessions(active)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_airline ON sessions(airline)`,
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create session index: %w", err)
		}
	}

	return nil
}

// SaveSession upserts a session snapshot. Active sessions keep
// active=1 so exactly one can be restored on startup.
func (s *SessionStorage) SaveSession(sess *session.FlightSession) error {
	readings, err := json.Marshal(sess.Readings)
	if err != nil {
		return fmt.Errorf("failed to encode readings: %w", err)
	}

	var endTime sql.NullString
	if sess.EndTime != nil {
		endTime = sql.NullString{String: sess.EndTime.Format(time.RFC3339), Valid: true}
	}

	active := 0
	if sess.IsActive() {
		active = 1
	}

	_, err = s.db.Exec(
		`INSERT INTO sessions
		(id, start_time, end_time, current_phase, airline, flight_number, seat, hydration_ml, readings, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			end_time = excluded.end_time,
			current_phase = excluded.current_phase,
			airline = excluded.airline,
			flight_number = excluded.flight_number,
			seat = excluded.seat,
			hydration_ml = excluded.hydration_ml,
			readings = excluded.readings,
			active = excluded.active`,
		sess.ID,
		sess.StartTime.Format(time.RFC3339),
		endTime,
		string(sess.CurrentPhase),
		nullableString(sess.Airline),
		nullableString(sess.FlightNumber),
		nullableString(sess.Seat),
		sess.HydrationMl,
		string(readings),
		active,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	return nil
}

// GetSessions returns archived sessions, most recent first.
func (s *SessionStorage) GetSessions() ([]*session.FlightSession, error) {
	rows, err := s.db.Query(
		`SELECT id, start_time, end_time, current_phase, airline, flight_number, seat, hydration_ml, readings
		FROM sessions
		WHERE active = 0
		ORDER BY start_time DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	return s.scanSessionRows(rows)
}

// GetSession returns one session by ID, or nil if not found.
func (s *SessionStorage) GetSession(id string) (*session.FlightSession, error) {
	rows, err := s.db.Query(
		`SELECT id, start_time, end_time, current_phase, airline, flight_number, seat, hydration_ml, readings
		FROM sessions
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	sessions, err := s.scanSessionRows(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

// GetActiveSession returns the in-progress session, or nil if none.
func (s *SessionStorage) GetActiveSession() (*session.FlightSession, error) {
	rows, err := s.db.Query(
		`SELECT id, start_time, end_time, current_phase, airline, flight_number, seat, hydration_ml, readings
		FROM sessions
		WHERE active = 1
		ORDER BY start_time DESC
		LIMIT 1`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}
	defer rows.Close()

	sessions, err := s.scanSessionRows(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

// DeleteSession removes a session by ID.
func (s *SessionStorage) DeleteSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// scanSessionRows scans database rows into FlightSession structs
func (s *SessionStorage) scanSessionRows(rows *sql.Rows) ([]*session.FlightSession, error) {
	var sessions []*session.FlightSession
	for rows.Next() {
		var sess session.FlightSession
		var startTime string
		var endTime, airline, flightNumber, seat sql.NullString
		var readings string

		if err := rows.Scan(
			&sess.ID,
			&startTime,
			&endTime,
			&sess.CurrentPhase,
			&airline,
			&flightNumber,
			&seat,
			&sess.HydrationMl,
			&readings,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		var err error
		sess.StartTime, err = time.Parse(time.RFC3339, startTime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}

		if endTime.Valid {
			parsed, err := time.Parse(time.RFC3339, endTime.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			sess.EndTime = &parsed
		}

		sess.Airline = stringPtr(airline)
		sess.FlightNumber = stringPtr(flightNumber)
		sess.Seat = stringPtr(seat)

		sess.Readings = []*airquality.Reading{}
		if err := json.Unmarshal([]byte(readings), &sess.Readings); err != nil {
			return nil, fmt.Errorf("failed to decode readings: %w", err)
		}

		sessions = append(sessions, &sess)
	}

	return sessions, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
