package dto

type CreateDepartmentDTO struct {
	Code string `json:"code" validate:"required,uppercase,min=2,max=32"`
	Name string `json:"name" validate:"required,min=2,max=128"`
}

type UpdateDepartmentDTO struct {
	Name string `json:"name" validate:"required,min=2,max=128"`
}

type DepartmentDTO struct {
	ID        uint64 `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
