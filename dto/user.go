package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"finreport/models"
	"finreport/pkg/crud"
	"finreport/pkg/nullable"

	"gorm.io/datatypes"
)

// MinPasswordLength is the basic password policy.
const MinPasswordLength = 6

// User never carries the password hash.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserCreateInput struct {
	ID        *string  `json:"id" binding:"omitempty,min=1,max=64"`
	Username  string   `json:"username" binding:"required,max=255"`
	Password  string   `json:"password" binding:"required,min=6"`
	FirstName *string  `json:"firstName" binding:"omitempty,max=255"`
	LastName  *string  `json:"lastName" binding:"omitempty,max=255"`
	Roles     []string `json:"roles"`
}

// UserUpdateInput: Password, when sent, is hashed by the service.
type UserUpdateInput struct {
	Username  *string                `json:"username"`
	Password  *string                `json:"password"`
	FirstName nullable.Value[string] `json:"firstName"`
	LastName  nullable.Value[string] `json:"lastName"`
	Roles     *[]string              `json:"roles"`
}

type UserWhereInput struct {
	ID        *string    `form:"id"`
	Username  *string    `form:"username"`
	FirstName *string    `form:"firstName"`
	LastName  *string    `form:"lastName"`
	CreatedAt *time.Time `form:"createdAt"`
	UpdatedAt *time.Time `form:"updatedAt"`
}

func (w UserWhereInput) Conditions() []crud.Condition {
	return crud.Where(
		crud.Eq("id", w.ID),
		crud.Eq("username", w.Username),
		crud.Eq("first_name", w.FirstName),
		crud.Eq("last_name", w.LastName),
		crud.Eq("created_at", w.CreatedAt),
		crud.Eq("updated_at", w.UpdatedAt),
	)
}

var UserSortColumns = map[string]string{
	"id":        "id",
	"username":  "username",
	"firstName": "first_name",
	"lastName":  "last_name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// LoginInput is the body of the login route.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RolesJSON encodes role names for the JSON column; nil becomes [].
func RolesJSON(roles []string) datatypes.JSON {
	if roles == nil {
		roles = []string{}
	}
	b, _ := json.Marshal(roles)
	return datatypes.JSON(b)
}

// RolesOf decodes the JSON column, treating malformed content as no roles.
func RolesOf(raw datatypes.JSON) []string {
	roles := []string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &roles); err != nil {
			return []string{}
		}
	}
	return roles
}

func UserFromModel(m models.User) User {
	return User{
		ID:        m.ID,
		Username:  m.Username,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Roles:     RolesOf(m.Roles),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// Model builds the record to insert; the service sets the password hash.
func (in UserCreateInput) Model() models.User {
	m := models.User{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Roles:     RolesJSON(in.Roles),
	}
	if in.ID != nil {
		m.ID = *in.ID
	}
	return m
}

func (in UserUpdateInput) Validate() error {
	var errs []error
	if in.Username != nil && (*in.Username == "" || utf8.RuneCountInString(*in.Username) > 255) {
		errs = append(errs, fmt.Errorf("%w: username must be 1 to 255 characters", ErrValidation))
	}
	if in.Password != nil && len(*in.Password) < MinPasswordLength {
		errs = append(errs, fmt.Errorf("%w: password too short (min %d)", ErrValidation, MinPasswordLength))
	}
	return errors.Join(errs...)
}

// Changes excludes the password, which must be hashed first.
func (in UserUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	if in.Username != nil {
		changes["username"] = *in.Username
	}
	setColumn(changes, "first_name", in.FirstName)
	setColumn(changes, "last_name", in.LastName)
	if in.Roles != nil {
		changes["roles"] = RolesJSON(*in.Roles)
	}
	return changes
}
