package logger

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDMetadataKey is the gRPC metadata key carrying the request ID.
const RequestIDMetadataKey = "x-request-id"

// MaxRequestIDLength bounds inbound request IDs; longer ones are replaced.
const MaxRequestIDLength = 128

// RequestIDInterceptor is a gRPC interceptor that adds a request ID to the context.
// An inbound x-request-id of at most MaxRequestIDLength bytes is reused,
// otherwise a new one is generated.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDMetadataKey); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = uuid.NewString()
		}

		return handler(ContextWithRequestID(ctx, requestID), req)
	}
}
