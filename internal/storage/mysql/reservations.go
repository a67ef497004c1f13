package mysql

import (
	"context"
	"database/sql"
	"time"

	"stayhub/internal/domain"
)

const dateLayout = "2006-01-02"

// CreateReservation closes the check-then-act gap: the room row and its
// confirmed reservations are locked, the overlap check re-runs under the
// lock, and the insert commits in the same transaction. Two racing bookings
// serialize on the row locks; the loser sees the winner's insert.
func (r *Repo) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var hotelID int64
	if err := tx.QueryRowContext(ctx, lockRoomSQL, res.RoomID).Scan(&hotelID); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return err
	}
	res.HotelID = hotelID

	rows, err := tx.QueryContext(ctx, confirmedRangesSQL, res.RoomID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var in, out time.Time
		if err := rows.Scan(&in, &out); err != nil {
			rows.Close()
			return err
		}
		if domain.Overlaps(res.CheckIn, res.CheckOut, in, out) {
			rows.Close()
			return domain.ErrConflict
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	ins, err := tx.ExecContext(ctx, insertReservationSQL,
		res.UserID, res.RoomID, res.HotelID,
		res.CheckIn.Format(dateLayout), res.CheckOut.Format(dateLayout),
		string(res.Status))
	if err != nil {
		return err
	}
	if res.ID, err = ins.LastInsertId(); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repo) GetReservation(ctx context.Context, id int64) (domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, getReservationSQL, id)
	res, err := scanReservation(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return res, err
}

func (r *Repo) ListReservations(ctx context.Context, q domain.ReservationsQuery) ([]domain.Reservation, error) {
	sqlStr := listReservationsSQL
	var args []any
	switch {
	case q.UserID != nil:
		sqlStr = listReservationsByUserSQL
		args = append(args, *q.UserID)
	case q.OwnerID != nil:
		sqlStr = listReservationsByOwnerSQL
		args = append(args, *q.OwnerID)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *Repo) SetReservationStatus(ctx context.Context, id int64, s domain.Status) error {
	if _, err := r.GetReservation(ctx, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, setReservationStatusSQL, string(s), id)
	return err
}

func (r *Repo) DeleteReservation(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteReservationSQL, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repo) ExpirePending(ctx context.Context, hotelID int64, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, expirePendingSQL, hotelID, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanReservation(scan func(...any) error) (domain.Reservation, error) {
	var res domain.Reservation
	var status string
	if err := scan(&res.ID, &res.UserID, &res.RoomID, &res.HotelID,
		&res.CheckIn, &res.CheckOut, &status, &res.CreatedAt); err != nil {
		return domain.Reservation{}, err
	}
	res.Status = domain.Status(status)
	return res, nil
}
