package mysql

import (
	"context"
	"database/sql"

	"stayhub/internal/domain"
)

// ---- hotels ----

func (r *Repo) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	res, err := r.db.ExecContext(ctx, insertHotelSQL,
		h.OwnerID, h.Name, h.City, h.Address, h.Telephone,
		valStr(h.Description), valF64(h.Lat), valF64(h.Lon),
		imagesJSON(h.Images), h.Validated)
	if err != nil {
		return err
	}
	h.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, id)
	h, err := scanHotel(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, err
}

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	sqlStr := `SELECT ` + hotelColumns + ` FROM hotels`
	var args []any
	switch {
	case q.OnlyValidated:
		sqlStr += ` WHERE validated = 1`
	case q.OwnerID != nil:
		sqlStr += ` WHERE user_id = ?`
		args = append(args, *q.OwnerID)
	}
	sqlStr += ` ORDER BY id`
	if q.Limit > 0 {
		sqlStr += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	_, err := r.db.ExecContext(ctx, updateHotelSQL,
		h.Name, h.City, h.Address, h.Telephone,
		valStr(h.Description), valF64(h.Lat), valF64(h.Lon),
		imagesJSON(h.Images), h.ID)
	return err
}

func (r *Repo) SetHotelValidated(ctx context.Context, id int64, validated bool) error {
	if _, err := r.GetHotel(ctx, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, setHotelValidatedSQL, validated, id)
	return err
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteHotelSQL, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repo) HotelIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, hotelIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanHotel(scan func(...any) error) (domain.Hotel, error) {
	var h domain.Hotel
	var desc sql.NullString
	var lat, lon sql.NullFloat64
	var imagesRaw []byte
	if err := scan(&h.ID, &h.OwnerID, &h.Name, &h.City, &h.Address, &h.Telephone,
		&desc, &lat, &lon, &imagesRaw, &h.Validated, &h.CreatedAt); err != nil {
		return domain.Hotel{}, err
	}
	h.Description = nullToPtr(desc)
	if lat.Valid {
		v := lat.Float64
		h.Lat = &v
	}
	if lon.Valid {
		v := lon.Float64
		h.Lon = &v
	}
	scanImages(imagesRaw, &h.Images)
	return h, nil
}

// ---- rooms ----

func (r *Repo) CreateRoom(ctx context.Context, rm *domain.Room) error {
	res, err := r.db.ExecContext(ctx, insertRoomSQL,
		rm.HotelID, rm.Name, rm.Type, rm.Price, rm.Capacity,
		valStr(rm.Description), imagesJSON(rm.Images))
	if err != nil {
		return err
	}
	rm.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	row := r.db.QueryRowContext(ctx, getRoomSQL, id)
	rm, err := scanRoom(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, err
}

func (r *Repo) ListRooms(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	return r.queryRooms(ctx, listRoomsSQL, hotelID)
}

func (r *Repo) ListAllRooms(ctx context.Context, limit int) ([]domain.Room, error) {
	return r.queryRooms(ctx, listAllRoomsSQL, limit)
}

func (r *Repo) ListRoomsByOwner(ctx context.Context, ownerID int64) ([]domain.Room, error) {
	return r.queryRooms(ctx, listRoomsByOwnerSQL, ownerID)
}

func (r *Repo) queryRooms(ctx context.Context, sqlStr string, args ...any) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateRoom(ctx context.Context, rm domain.Room) error {
	_, err := r.db.ExecContext(ctx, updateRoomSQL,
		rm.Name, rm.Type, rm.Price, rm.Capacity,
		valStr(rm.Description), imagesJSON(rm.Images), rm.ID)
	return err
}

func (r *Repo) DeleteRoom(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteRoomSQL, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanRoom(scan func(...any) error) (domain.Room, error) {
	var rm domain.Room
	var desc sql.NullString
	var imagesRaw []byte
	if err := scan(&rm.ID, &rm.HotelID, &rm.Name, &rm.Type, &rm.Price, &rm.Capacity,
		&desc, &imagesRaw, &rm.CreatedAt); err != nil {
		return domain.Room{}, err
	}
	rm.Description = nullToPtr(desc)
	scanImages(imagesRaw, &rm.Images)
	return rm, nil
}
