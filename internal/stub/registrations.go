package stub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitevents/bitevents/internal/model"
)

// Register books one attendance inside a transaction: the capacity check,
// the duplicate check, and the insert must observe the same state.
func (s *Store) Register(ctx context.Context, eventID, userID int64) (*model.Registration, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT capacity FROM events WHERE id = ?`, eventID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event capacity: %w", err)
	}

	var dup int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ? AND user_id = ?`,
		eventID, userID).Scan(&dup)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dup > 0 {
		err = ErrAlreadyRegistered
		return nil, err
	}

	if capacity.Valid {
		var count int64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM registrations WHERE event_id = ?`, eventID).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("count registrations: %w", err)
		}
		if count >= capacity.Int64 {
			err = ErrEventFull
			return nil, err
		}
	}

	reg := &model.Registration{
		UserID:           userID,
		RegistrationDate: time.Now().UTC(),
		Status:           "Confirmed",
		TicketCode:       strings.ToUpper(uuid.NewString()[:8]),
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (event_id, user_id, registration_date, status, ticket_code)
		 VALUES (?, ?, ?, ?, ?)`,
		eventID, userID, fmtTime(reg.RegistrationDate), reg.Status, reg.TicketCode,
	)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	if reg.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("registration id: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if event, gerr := s.GetEvent(ctx, eventID); gerr == nil {
		reg.Event = event
	}
	return reg, nil
}

// Unregister cancels an attendance, or returns ErrNotFound.
func (s *Store) Unregister(ctx context.Context, eventID, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE event_id = ? AND user_id = ?`, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// RegistrationCount returns the number of attendees of one event.
func (s *Store) RegistrationCount(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ?`, eventID).Scan(&count)
	return count, err
}

// IsRegistered reports whether the user attends the event.
func (s *Store) IsRegistered(ctx context.Context, eventID, userID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ? AND user_id = ?`,
		eventID, userID).Scan(&count)
	return count > 0, err
}

// RegistrationsByUser lists everything the user attends, event included.
func (s *Store) RegistrationsByUser(ctx context.Context, userID int64) ([]model.Registration, error) {
	return s.listRegistrations(ctx, `r.user_id = ?`, userID)
}

// RegistrationsByEvent lists attendees of one event.
func (s *Store) RegistrationsByEvent(ctx context.Context, eventID int64) ([]model.Registration, error) {
	return s.listRegistrations(ctx, `r.event_id = ?`, eventID)
}

func (s *Store) listRegistrations(ctx context.Context, cond string, arg int64) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.registration_date, r.status, r.ticket_code, r.event_id
		 FROM registrations r WHERE `+cond+` ORDER BY r.registration_date ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	regs := []model.Registration{}
	var eventIDs []int64
	for rows.Next() {
		var (
			reg     model.Registration
			regDate string
			eventID int64
		)
		if err := rows.Scan(&reg.ID, &reg.UserID, &regDate, &reg.Status, &reg.TicketCode, &eventID); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.RegistrationDate = parseTime(regDate)
		regs = append(regs, reg)
		eventIDs = append(eventIDs, eventID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range regs {
		event, err := s.GetEvent(ctx, eventIDs[i])
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		regs[i].Event = event
	}
	return regs, nil
}

// SaveEvent bookmarks an event for a user, or returns ErrAlreadySaved.
func (s *Store) SaveEvent(ctx context.Context, eventID, userID int64) (*model.SavedEvent, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	saved, err := s.IsSaved(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if saved {
		return nil, ErrAlreadySaved
	}

	se := &model.SavedEvent{UserID: userID, SavedDate: time.Now().UTC()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_events (event_id, user_id, saved_date) VALUES (?, ?, ?)`,
		eventID, userID, fmtTime(se.SavedDate))
	if err != nil {
		return nil, fmt.Errorf("insert saved event: %w", err)
	}
	if se.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("saved event id: %w", err)
	}
	if event, gerr := s.GetEvent(ctx, eventID); gerr == nil {
		se.Event = event
	}
	return se, nil
}

// UnsaveEvent removes a bookmark, or returns ErrNotFound.
func (s *Store) UnsaveEvent(ctx context.Context, eventID, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_events WHERE event_id = ? AND user_id = ?`, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete saved event: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// SavedByUser lists the user's bookmarked events, most recently saved first.
func (s *Store) SavedByUser(ctx context.Context, userID int64) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id FROM saved_events WHERE user_id = ? ORDER BY saved_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved events: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan saved event: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	events := []model.Event{}
	for _, id := range ids {
		event, err := s.GetEvent(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		events = append(events, *event)
	}
	return events, nil
}

// IsSaved reports whether the user bookmarked the event.
func (s *Store) IsSaved(ctx context.Context, eventID, userID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM saved_events WHERE event_id = ? AND user_id = ?`,
		eventID, userID).Scan(&count)
	return count > 0, err
}
