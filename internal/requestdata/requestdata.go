package requestdata

import (
	"context"

	"github.com/google/uuid"
)

const (
	RoleDonor = "donor"
	RoleAdmin = "admin"
)

type requestDataKey struct{}

// RequestData is the acting-user identity produced by the auth middleware.
// The core never issues tokens; it only consumes what the gate verified.
type RequestData struct {
	UserID   uuid.UUID
	Role     string
	Username string
	Email    string
}

func (rd *RequestData) IsAdmin() bool {
	return rd != nil && rd.Role == RoleAdmin
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
