package dto

// RoleUpdateRequest payload for PATCH /api/admin/users/:id.
type RoleUpdateRequest struct {
	Role string `json:"role" validate:"required,oneof=BUYER SELLER ADMIN"`
}

// OrderStatusRequest payload for PATCH /api/admin/orders/:id.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING COMPLETED CANCELED"`
}
