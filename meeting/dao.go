package meeting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mentorship/apperr"
	"mentorship/database"
	"mentorship/mentee"

	"github.com/google/uuid"
)

// BookSlot atomically marks the slot as booked and records the meeting.
//
// The slot row is locked for the duration of the transaction and the flag flip
// is conditional, so of two concurrent bookings of the same slot exactly one
// succeeds and the other gets apperr.ErrSlotUnavailable.
func (a *Accessor) BookSlot(ctx context.Context, booker mentee.Mentee, b Booking) (Meeting, error) {
	if err := b.Validate(); err != nil {
		return Meeting{}, err
	}

	m := Meeting{
		ID:          uuid.New(),
		SlotID:      b.SlotID,
		MenteeID:    booker.ID,
		MenteeName:  booker.Name,
		Tag:         b.Tag,
		Description: b.Description,
	}

	err := database.WithTx(ctx, a.db, func(tx *sql.Tx) error {
		var (
			mentorID uuid.UUID
			booked   bool
		)
		query := `SELECT mentor_id, data_inicial, agendado FROM horarios WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRowContext(ctx, query, b.SlotID).Scan(&mentorID, &m.StartsAt, &booked); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.ErrSlotUnavailable
			}
			return fmt.Errorf("load slot: %w", err)
		}
		if booked {
			return apperr.ErrSlotUnavailable
		}
		if mentorID != booker.MentorID {
			return apperr.ErrInvalidSlot
		}

		res, err := tx.ExecContext(ctx, `UPDATE horarios SET agendado = TRUE WHERE id = $1 AND agendado = FALSE`, b.SlotID)
		if err != nil {
			return fmt.Errorf("mark slot booked: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return apperr.ErrSlotUnavailable
		}

		query = `INSERT INTO reunioes (id, data_id, mentorado_id, tag, descricao) VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.ExecContext(ctx, query, m.ID, m.SlotID, m.MenteeID, m.Tag, m.Description); err != nil {
			return fmt.Errorf("insert meeting: %w", err)
		}
		return nil
	})
	if err != nil {
		return Meeting{}, err
	}

	return m, nil
}

// ListMeetingsForMentor returns every meeting booked on the mentor's slots, earliest first.
func (a *Accessor) ListMeetingsForMentor(ctx context.Context, mentorID uuid.UUID) ([]Meeting, error) {
	query := `SELECT r.id, r.data_id, r.mentorado_id, m.nome, r.tag, r.descricao, h.data_inicial
		FROM reunioes r
		JOIN horarios h ON h.id = r.data_id
		JOIN mentorados m ON m.id = r.mentorado_id
		WHERE h.mentor_id = $1
		ORDER BY h.data_inicial`
	rows, err := a.db.QueryContext(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	meetings := []Meeting{}
	for rows.Next() {
		var m Meeting
		if err := rows.Scan(&m.ID, &m.SlotID, &m.MenteeID, &m.MenteeName, &m.Tag, &m.Description, &m.StartsAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		meetings = append(meetings, m)
	}

	return meetings, rows.Err()
}
