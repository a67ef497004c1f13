package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-sql-driver/mysql"

	"stayhub/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// imagesJSON renders the image list column: NULL until any image exists,
// then always a JSON array.
func imagesJSON(imgs []string) any {
	if len(imgs) == 0 {
		return nil
	}
	b, _ := json.Marshal(imgs)
	return string(b)
}

func scanImages(raw []byte, dst *[]string) {
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, dst)
	}
}

func nullToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- users ----

func (r *Repo) CreateUser(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, insertUserSQL,
		u.Name, u.Email, valStr(u.Telephone), u.PasswordHash, string(u.Role))
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
}

func (r *Repo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
}

func (r *Repo) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var tel sql.NullString
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &tel, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.Telephone = nullToPtr(tel)
	u.Role = domain.Role(role)
	return u, nil
}

func (r *Repo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		var tel sql.NullString
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &tel, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Telephone = nullToPtr(tel)
		u.Role = domain.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUserRole assumes the caller verified the user exists; RowsAffected
// is useless here since MySQL reports 0 for a same-value update.
func (r *Repo) UpdateUserRole(ctx context.Context, id int64, role domain.Role) error {
	_, err := r.db.ExecContext(ctx, updateUserRoleSQL, string(role), id)
	return err
}

// requireRow maps zero affected rows to ErrNotFound. Only valid for DELETEs:
// updates can legitimately affect zero rows when nothing changed.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
