package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	domain "auth-service/internal/domain/user"
	"auth-service/internal/usecase/auth"
	apperrors "auth-service/pkg/errors"
	"auth-service/pkg/logger"
)

// MsgInvalidRequest is returned when a request field has the wrong type.
const MsgInvalidRequest = "Invalid request body"

// AuthServer implements the gRPC auth service
type AuthServer struct {
	uc  auth.Service
	log *zap.Logger
}

// NewAuthServer creates a new gRPC auth service server
func NewAuthServer(uc auth.Service, log *zap.Logger) *AuthServer {
	return &AuthServer{uc: uc, log: log}
}

// Register handles gRPC Register request
func (s *AuthServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f, err := stringFields(in, "name", "email", "password", "picture", "status")
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("invalid gRPC register request", zap.Error(err))
		return nil, err
	}

	u, err := s.uc.Register(ctx, auth.RegisterRequest{
		Name:     f["name"],
		Email:    f["email"],
		Password: f["password"],
		Picture:  f["picture"],
		Status:   f["status"],
	})
	if err != nil {
		return nil, err
	}

	return userStruct(u)
}

// SignIn handles gRPC SignIn request
func (s *AuthServer) SignIn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f, err := stringFields(in, "email", "password")
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("invalid gRPC sign-in request", zap.Error(err))
		return nil, err
	}

	u, err := s.uc.SignIn(ctx, auth.SignInRequest{
		Email:    f["email"],
		Password: f["password"],
	})
	if err != nil {
		return nil, err
	}

	return userStruct(u)
}

// stringFields reads the named string fields of in. Missing and null fields
// read as empty; fields of any other type are rejected.
func stringFields(in *structpb.Struct, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	fields := in.GetFields()
	for _, name := range names {
		v, ok := fields[name]
		if !ok {
			continue
		}
		switch k := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			out[name] = k.StringValue
		case *structpb.Value_NullValue:
		default:
			return nil, apperrors.BadRequest(MsgInvalidRequest)
		}
	}
	return out, nil
}

func userStruct(u *domain.User) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"user": map[string]interface{}{
			"id":         u.ID,
			"name":       u.Name,
			"email":      u.Email,
			"picture":    u.Picture,
			"status":     u.Status,
			"created_at": u.CreatedAt.UTC().Format(time.RFC3339Nano),
			"updated_at": u.UpdatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return nil, apperrors.Internal("failed to encode user", err)
	}
	return s, nil
}
