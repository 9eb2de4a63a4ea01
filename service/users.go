package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finreport/dto"
	"finreport/models"
	"finreport/pkg/crud"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown user or a
// wrong password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

var userSchema = crud.Schema{Name: "User", Columns: dto.UserSortColumns}

// Users serves the User resource. Passwords are stored as bcrypt hashes and
// never returned.
type Users struct {
	*resource[models.User, dto.User, dto.UserWhereInput]
}

func (s *Users) Create(ctx context.Context, in dto.UserCreateInput) (dto.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return dto.User{}, fmt.Errorf("%w: username required", dto.ErrValidation)
	}
	if len(in.Password) < dto.MinPasswordLength {
		return dto.User{}, fmt.Errorf("%w: password too short (min %d)", dto.ErrValidation, dto.MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.User{}, err
	}
	rec := in.Model()
	rec.Password = hash
	return s.create(ctx, &rec, nil, nil)
}

func (s *Users) Update(ctx context.Context, id string, in dto.UserUpdateInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	changes := in.Changes()
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		changes["password"] = hash
	}
	return s.update(ctx, id, changes, nil)
}

// Authenticate checks the password of username and returns the user.
func (s *Users) Authenticate(ctx context.Context, username, password string) (dto.User, error) {
	var rec models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return dto.User{}, fmt.Errorf("look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(rec.Password, []byte(password)); err != nil {
		return dto.User{}, ErrInvalidCredentials
	}
	return dto.UserFromModel(rec), nil
}
