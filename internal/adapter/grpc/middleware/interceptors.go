package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	apperrors "auth-service/pkg/errors"
	"auth-service/pkg/logger"
)

// RecoveryInterceptor converts a panic in a handler into codes.Internal.
func RecoveryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithContext(ctx, log).Error("panic recovered in gRPC handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				err = status.Error(codes.Internal, apperrors.ErrInternal.Message)
			}
		}()
		return handler(ctx, req)
	}
}

// ErrorInterceptor converts classified errors into gRPC statuses carrying
// the client-facing message. Unclassified errors become codes.Internal.
func ErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return nil, ToStatus(err)
	}
}

// ToStatus maps err to a gRPC status error.
func ToStatus(err error) error {
	if e, ok := apperrors.As(err); ok {
		if apperrors.StatusOf(e) < http.StatusInternalServerError {
			return e.GRPCStatus().Err()
		}
		return status.Error(codes.Internal, apperrors.MessageOf(err))
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return err
	}
	return status.Error(codes.Internal, apperrors.MessageOf(err))
}

// LoggingInterceptor logs every unary call with its status code and latency.
func LoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", clientIP(ctx)),
		}

		l := logger.WithContext(ctx, log)
		switch code {
		case codes.OK:
			l.Info("grpc request", fields...)
		case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
			l.Error("grpc request", append(fields, zap.Error(err))...)
		default:
			l.Warn("grpc request", fields...)
		}
		return resp, err
	}
}

func clientIP(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}
