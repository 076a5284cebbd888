package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/holidaze/internal/database"
	"github.com/iliyamo/holidaze/internal/model"
	"github.com/iliyamo/holidaze/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,name,email,password_hash,role,bio,avatar_url,avatar_alt,banner_url,banner_alt,is_active,created_at,updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u                   model.User
		bio                 sql.NullString
		avURL, avAlt        sql.NullString
		bannerURL, bannerAl sql.NullString
	)
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &bio,
		&avURL, &avAlt, &bannerURL, &bannerAl, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	u.Bio = bio.String
	u.Avatar = media(avURL, avAlt)
	u.Banner = media(bannerURL, bannerAl)
	return u, nil
}

func media(url, alt sql.NullString) *model.Media {
	if !url.Valid || url.String == "" {
		return nil
	}
	return &model.Media{URL: url.String, Alt: alt.String}
}

func mediaArgs(m *model.Media) (any, any) {
	if m == nil || m.URL == "" {
		return nil, nil
	}
	return m.URL, m.Alt
}

// Create hashes the password and inserts the user, returning its ID.
// Duplicate emails and names map to ErrEmailExists and ErrNameExists.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	avURL, avAlt := mediaArgs(u.Avatar)
	bnURL, bnAlt := mediaArgs(u.Banner)
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, bio, avatar_url, avatar_alt, banner_url, banner_alt)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		u.Name, email, hash, u.Role, u.Bio, avURL, avAlt, bnURL, bnAlt)
	if err != nil {
		if database.IsDuplicateKey(err) {
			if strings.Contains(err.Error(), "uq_users_name") {
				return 0, ErrNameExists
			}
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByName fetches a user by profile name.
func (r *UserRepo) GetByName(ctx context.Context, name string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE name=? LIMIT 1", name))
}

// UpdateProfile applies the non-nil fields of upd and returns the fresh row.
// Toggling VenueManager switches the role between CUSTOMER and MANAGER.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, upd model.ProfileUpdate) (model.User, error) {
	sets := []string{}
	args := []any{}
	if upd.Bio != nil {
		sets = append(sets, "bio=?")
		args = append(args, *upd.Bio)
	}
	if upd.Avatar != nil {
		u, a := mediaArgs(upd.Avatar)
		sets = append(sets, "avatar_url=?", "avatar_alt=?")
		args = append(args, u, a)
	}
	if upd.Banner != nil {
		u, a := mediaArgs(upd.Banner)
		sets = append(sets, "banner_url=?", "banner_alt=?")
		args = append(args, u, a)
	}
	if upd.VenueManager != nil {
		role := model.RoleCustomer
		if *upd.VenueManager {
			role = model.RoleManager
		}
		sets = append(sets, "role=?")
		args = append(args, role)
	}
	if len(sets) > 0 {
		args = append(args, id)
		res, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
		if err != nil {
			return model.User{}, fmt.Errorf("update profile: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// RowsAffected is 0 both for a missing row and for an unchanged one.
			if _, err := r.GetByID(ctx, id); err != nil {
				return model.User{}, err
			}
		}
	}
	return r.GetByID(ctx, id)
}

// Counts returns how many venues and bookings a user has.
func (r *UserRepo) Counts(ctx context.Context, id uint64) (model.ProfileCount, error) {
	var c model.ProfileCount
	err := r.DB.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM venues WHERE owner_id=?),
		        (SELECT COUNT(*) FROM bookings WHERE customer_id=?)`,
		id, id).Scan(&c.Venues, &c.Bookings)
	return c, err
}

// ProfilesByID loads the public profiles of the given users.
func (r *UserRepo) ProfilesByID(ctx context.Context, ids []uint64) (map[uint64]model.Profile, error) {
	out := make(map[uint64]model.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u.Profile()
	}
	return out, rows.Err()
}
