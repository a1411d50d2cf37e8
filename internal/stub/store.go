// Package stub is an in-process stand-in for the external BitEvents REST
// API. It exists so the client can be demoed and integration-tested without
// the real backend: in-memory SQLite persistence, real password hashing, and
// real JWTs with expiry claims, but nothing durable.
package stub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bitevents/bitevents/internal/model"
)

// Sentinel errors surfaced to handlers for status-code dispatch.
var (
	ErrNotFound          = errors.New("not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrEventFull         = errors.New("event is fully booked")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrAlreadySaved      = errors.New("event already saved")
	ErrBadCredentials    = errors.New("invalid email or password")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name        TEXT NOT NULL,
	email            TEXT NOT NULL UNIQUE,
	password_hash    TEXT NOT NULL,
	registration_date TEXT NOT NULL,
	profile_picture  TEXT,
	is_organizer     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS venues (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	name            TEXT NOT NULL,
	address         TEXT NOT NULL,
	city            TEXT NOT NULL,
	latitude        REAL,
	longitude       REAL,
	google_maps_url TEXT
);

CREATE TABLE IF NOT EXISTS events (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	organizer_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	venue_id           INTEGER NOT NULL REFERENCES venues(id),
	name               TEXT NOT NULL,
	description        TEXT NOT NULL,
	type               TEXT NOT NULL,
	creation_date_time TEXT NOT NULL,
	start_date_time    TEXT NOT NULL,
	end_date_time      TEXT,
	capacity           INTEGER,
	price              REAL NOT NULL DEFAULT 0,
	image_url          TEXT,
	status             TEXT NOT NULL DEFAULT 'Upcoming'
);

CREATE TABLE IF NOT EXISTS registrations (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id          INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id           INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	registration_date TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'Confirmed',
	ticket_code       TEXT NOT NULL,
	UNIQUE(event_id, user_id)
);

CREATE TABLE IF NOT EXISTS saved_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id   INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	saved_date TEXT NOT NULL,
	UNIQUE(event_id, user_id)
);
`

// Store wraps the SQLite database behind domain-shaped queries. It mirrors
// the contract of the real backend's persistence, not its scale.
type Store struct {
	db *sql.DB
}

// NewStore opens an in-memory SQLite database and creates the schema. Each
// Store gets its own database, so parallel test servers do not share state.
func NewStore(ctx context.Context) (*Store, error) {
	dsn := fmt.Sprintf("file:stub-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps the shared in-memory database alive and
	// serialises writers, which is plenty for a dev stub.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

const timeLayout = time.RFC3339

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// ─── Users ────────────────────────────────────────────────────────────────────

// CreateUser inserts an account and returns it, or ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, fullName, email, passwordHash string, isOrganizer bool) (*model.User, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return nil, ErrEmailTaken
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (full_name, email, password_hash, registration_date, is_organizer)
		 VALUES (?, ?, ?, ?, ?)`,
		fullName, email, passwordHash, fmtTime(now), boolToInt(isOrganizer),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	return &model.User{
		ID:               id,
		FullName:         fullName,
		Email:            email,
		RegistrationDate: &now,
		IsOrganizer:      isOrganizer,
	}, nil
}

// Credentials returns the user and password hash for email, or ErrNotFound.
func (s *Store) Credentials(ctx context.Context, email string) (*model.User, string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, password_hash, registration_date, profile_picture, is_organizer
		 FROM users WHERE email = ?`, email)
	u, hash, err := scanUserWithHash(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("get user by email: %w", err)
	}
	return u, hash, nil
}

// UserByID returns one user, or ErrNotFound.
func (s *Store) UserByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, password_hash, registration_date, profile_picture, is_organizer
		 FROM users WHERE id = ?`, id)
	u, _, err := scanUserWithHash(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// PasswordHash returns the stored hash for a user id.
func (s *Store) PasswordHash(ctx context.Context, id int64) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return hash, err
}

// UpdateProfile changes the display name and profile picture.
func (s *Store) UpdateProfile(ctx context.Context, id int64, fullName string, profilePicture *string) (*model.User, error) {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, profile_picture = ? WHERE id = ?`,
		fullName, profilePicture, id); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.UserByID(ctx, id)
}

// UpdatePassword replaces the stored hash.
func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}

// DeleteUser removes the account and, via cascades, its join records.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func scanUserWithHash(row *sql.Row) (*model.User, string, error) {
	var (
		u       model.User
		hash    string
		regDate string
		pic     sql.NullString
		isOrg   int
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &hash, &regDate, &pic, &isOrg); err != nil {
		return nil, "", err
	}
	t := parseTime(regDate)
	u.RegistrationDate = &t
	if pic.Valid {
		u.ProfilePicture = &pic.String
	}
	u.IsOrganizer = isOrg != 0
	return &u, hash, nil
}

// ─── Events ───────────────────────────────────────────────────────────────────

const eventColumns = `
	e.id, e.name, e.description, e.type, e.creation_date_time, e.start_date_time,
	e.end_date_time, e.capacity, e.price, e.image_url, e.status,
	u.id, u.full_name, u.email, u.is_organizer,
	v.id, v.name, v.address, v.city, v.latitude, v.longitude, v.google_maps_url`

const eventJoins = `
	FROM events e
	JOIN users u ON u.id = e.organizer_id
	JOIN venues v ON v.id = e.venue_id`

// ListEvents applies the directory filters and returns one 1-based page plus
// the unfiltered-by-pagination total, sorted by start time ascending.
func (s *Store) ListEvents(ctx context.Context, search string, cities []string, category string, page, limit int) (*model.PagedEvents, error) {
	where := []string{"1=1"}
	var args []any

	if search != "" {
		where = append(where, "(e.name LIKE ? OR e.description LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if len(cities) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(cities)), ",")
		where = append(where, "LOWER(v.city) IN ("+placeholders+")")
		for _, c := range cities {
			args = append(args, strings.ToLower(c))
		}
	}
	if category != "" {
		where = append(where, "LOWER(e.type) = ?")
		args = append(args, strings.ToLower(category))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) "+eventJoins+" WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	query := "SELECT " + eventColumns + eventJoins + " WHERE " + cond +
		" ORDER BY e.start_date_time ASC LIMIT ? OFFSET ?"
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &model.PagedEvents{
		Events:     events,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetEvent returns one event with organizer and venue, or ErrNotFound.
func (s *Store) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+eventJoins+" WHERE e.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanEvent(rows)
}

// CreateEvent inserts the event together with its inline venue.
func (s *Store) CreateEvent(ctx context.Context, organizerID int64, req model.EventRequest) (*model.Event, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO venues (name, address, city, latitude, longitude, google_maps_url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.Venue.Name, req.Venue.Address, req.Venue.City,
		req.Venue.Latitude, req.Venue.Longitude, req.Venue.GoogleMapsURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert venue: %w", err)
	}
	venueID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("venue id: %w", err)
	}

	var end any
	if req.EndDateTime != nil {
		end = fmtTime(*req.EndDateTime)
	}
	res, err = s.db.ExecContext(ctx,
		`INSERT INTO events (organizer_id, venue_id, name, description, type,
		                     creation_date_time, start_date_time, end_date_time,
		                     capacity, price, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		organizerID, venueID, req.Name, req.Description, req.Type,
		fmtTime(time.Now()), fmtTime(req.StartDateTime), end,
		req.Capacity, req.Price, req.ImageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("event id: %w", err)
	}
	return s.GetEvent(ctx, id)
}

// UpdateEvent replaces an event's fields and its venue.
func (s *Store) UpdateEvent(ctx context.Context, id int64, req model.EventRequest) (*model.Event, error) {
	var venueID int64
	err := s.db.QueryRowContext(ctx, `SELECT venue_id FROM events WHERE id = ?`, id).Scan(&venueID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get venue id: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE venues SET name = ?, address = ?, city = ?, latitude = ?, longitude = ?, google_maps_url = ?
		 WHERE id = ?`,
		req.Venue.Name, req.Venue.Address, req.Venue.City,
		req.Venue.Latitude, req.Venue.Longitude, req.Venue.GoogleMapsURL, venueID,
	); err != nil {
		return nil, fmt.Errorf("update venue: %w", err)
	}

	var end any
	if req.EndDateTime != nil {
		end = fmtTime(*req.EndDateTime)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE events SET name = ?, description = ?, type = ?, start_date_time = ?,
		                   end_date_time = ?, capacity = ?, price = ?, image_url = ?
		 WHERE id = ?`,
		req.Name, req.Description, req.Type, fmtTime(req.StartDateTime),
		end, req.Capacity, req.Price, req.ImageURL, id,
	); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetEvent(ctx, id)
}

// DeleteEvent removes the event and its join records.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// EventOwner returns the organizer id of an event, or ErrNotFound.
func (s *Store) EventOwner(ctx context.Context, id int64) (int64, error) {
	var owner int64
	err := s.db.QueryRowContext(ctx, `SELECT organizer_id FROM events WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return owner, err
}

// EventsByOrganizer lists an organizer's own events, newest start first.
func (s *Store) EventsByOrganizer(ctx context.Context, organizerID int64) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+eventJoins+" WHERE e.organizer_id = ? ORDER BY e.start_date_time DESC",
		organizerID)
	if err != nil {
		return nil, fmt.Errorf("events by organizer: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var (
		e        model.Event
		org      model.User
		venue    model.Venue
		creation string
		start    string
		end      sql.NullString
		capacity sql.NullInt64
		image    sql.NullString
		lat, lng sql.NullFloat64
		mapsURL  sql.NullString
		isOrg    int
	)
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Type, &creation, &start,
		&end, &capacity, &e.Price, &image, &e.Status,
		&org.ID, &org.FullName, &org.Email, &isOrg,
		&venue.ID, &venue.Name, &venue.Address, &venue.City, &lat, &lng, &mapsURL,
	)
	if err != nil {
		return nil, err
	}

	e.CreationDateTime = parseTime(creation)
	e.StartDateTime = parseTime(start)
	if end.Valid {
		t := parseTime(end.String)
		e.EndDateTime = &t
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		e.Capacity = &c
	}
	if image.Valid {
		e.ImageURL = &image.String
	}
	org.IsOrganizer = isOrg != 0
	e.Organizer = &org
	if lat.Valid {
		venue.Latitude = &lat.Float64
	}
	if lng.Valid {
		venue.Longitude = &lng.Float64
	}
	if mapsURL.Valid {
		venue.GoogleMapsURL = mapsURL.String
	}
	e.Venue = &venue
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
