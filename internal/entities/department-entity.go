package entities

import "project-management/pkg/types"

type Department struct {
	ID   uint64 `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`

	types.BaseEntity
}
