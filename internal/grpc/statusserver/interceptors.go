package statusserver

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// loggingInterceptor logs all unary RPC calls
func loggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.Debug().
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Int("request_bytes", messageSize(req)).
			Int("response_bytes", messageSize(resp)).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("gRPC call")
		return resp, err
	}
}

// recoveryInterceptor catches panics and returns proper gRPC errors
func recoveryInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("method", info.FullMethod).
					Interface("panic", r).
					Msg("Recovered from panic in gRPC handler")
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// streamLoggingInterceptor logs streaming RPCs such as health Watch
func streamLoggingInterceptor(logger zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)

		logger.Debug().
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("gRPC stream")
		return err
	}
}

// streamRecoveryInterceptor catches panics in streaming handlers
func streamRecoveryInterceptor(logger zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("method", info.FullMethod).
					Interface("panic", r).
					Msg("Recovered from panic in gRPC stream handler")
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(srv, ss)
	}
}

func messageSize(v interface{}) int {
	if m, ok := v.(proto.Message); ok {
		return proto.Size(m)
	}
	return 0
}
