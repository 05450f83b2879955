package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/iho/bankledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the metadata key for idempotency
	IdempotencyKeyHeader = "x-idempotency-key"
	defaultIdempotencyTTL = 24 * time.Hour
)

type releaser interface {
	Release(ctx context.Context, key string) error
}

// record is stored under the idempotency key. Response is empty while the
// first call is still running.
type record struct {
	Hash     string `json:"hash"`
	Response []byte `json:"response,omitempty"`
}

// IdempotencyInterceptor creates a gRPC unary interceptor for idempotency.
// readOnly lists full method names that are never deduplicated.
func IdempotencyInterceptor(store usecase.IdempotencyStore, ttl time.Duration, readOnly ...string) grpc.UnaryServerInterceptor {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	skip := make(map[string]bool, len(readOnly))
	for _, m := range readOnly {
		skip[m] = true
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if store == nil || skip[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}

		keys := md.Get(IdempotencyKeyHeader)
		if len(keys) == 0 {
			return handler(ctx, req)
		}

		idempotencyKey := keys[0]
		if idempotencyKey == "" {
			return nil, status.Error(codes.InvalidArgument, "idempotency key cannot be empty")
		}

		cacheKey := fmt.Sprintf("grpc:%s:%s", info.FullMethod, idempotencyKey)

		requestHash, err := hashRequest(req)
		if err != nil {
			return nil, status.Error(codes.Internal, "failed to generate request hash")
		}

		pending, _ := json.Marshal(record{Hash: requestHash})
		exists, stored, err := store.CheckAndSet(ctx, cacheKey, pending, ttl)
		if err != nil {
			// Degraded mode: serve the call without deduplication.
			zerolog.Ctx(ctx).Warn().Err(err).Str("method", info.FullMethod).Msg("idempotency store unavailable")
			return handler(ctx, req)
		}

		if exists {
			return replay(stored, requestHash)
		}

		resp, err := handler(ctx, req)
		if err != nil {
			if rel, ok := store.(releaser); ok {
				if relErr := rel.Release(ctx, cacheKey); relErr != nil {
					zerolog.Ctx(ctx).Warn().Err(relErr).Msg("failed to release idempotency key")
				}
			}
			return resp, err
		}

		if msg, ok := resp.(proto.Message); ok {
			if data, err := proto.Marshal(msg); err == nil {
				done, _ := json.Marshal(record{Hash: requestHash, Response: data})
				if err := store.Update(ctx, cacheKey, done, ttl); err != nil {
					zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to store idempotent response")
				}
			}
		}

		return resp, nil
	}
}

func replay(stored []byte, requestHash string) (any, error) {
	var rec record
	if err := json.Unmarshal(stored, &rec); err != nil {
		return nil, status.Error(codes.Aborted, "request with this idempotency key is in progress")
	}

	if rec.Hash != requestHash {
		return nil, status.Error(codes.InvalidArgument, "idempotency key reused with different request body")
	}

	if len(rec.Response) == 0 {
		return nil, status.Error(codes.Aborted, "request with this idempotency key is in progress")
	}

	out := new(structpb.Struct)
	if err := proto.Unmarshal(rec.Response, out); err != nil {
		return nil, status.Error(codes.Internal, "failed to decode cached response")
	}
	return out, nil
}

// hashRequest generates a SHA-256 hash of the request for fingerprinting
func hashRequest(req any) (string, error) {
	if protoMsg, ok := req.(proto.Message); ok {
		data, err := proto.MarshalOptions{Deterministic: true}.Marshal(protoMsg)
		if err != nil {
			return "", err
		}

		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:]), nil
	}

	data := []byte(fmt.Sprintf("%+v", req))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
