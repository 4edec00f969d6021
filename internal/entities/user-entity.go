package entities

import "project-management/pkg/types"

type User struct {
	ID    uint64 `json:"id" db:"id"`
	Fio   string `json:"fio" db:"fio"`
	Email string `json:"email" db:"email"`

	Password string `json:"-" db:"password"`

	RoleID   uint64 `json:"role_id" db:"role_id"`
	RoleCode string `json:"role_code" db:"role_code"`

	types.BaseEntity
	types.SoftDelete
}
