package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bankledger.v1.LedgerService"

// Method names.
const (
	MethodCreateAccount = "CreateAccount"
	MethodDeposit       = "Deposit"
	MethodWithdraw      = "Withdraw"
	MethodBalance       = "Balance"
	MethodHistory       = "History"
)

// FullMethod returns "/bankledger.v1.LedgerService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// LedgerServiceServer is the server API for LedgerService. Requests and
// responses are google.protobuf.Struct so that arguments stay loosely typed.
type LedgerServiceServer interface {
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Balance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodHandler(method string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LedgerServiceDesc is the grpc.ServiceDesc for LedgerService.
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCreateAccount, Handler: methodHandler(MethodCreateAccount, LedgerServiceServer.CreateAccount)},
		{MethodName: MethodDeposit, Handler: methodHandler(MethodDeposit, LedgerServiceServer.Deposit)},
		{MethodName: MethodWithdraw, Handler: methodHandler(MethodWithdraw, LedgerServiceServer.Withdraw)},
		{MethodName: MethodBalance, Handler: methodHandler(MethodBalance, LedgerServiceServer.Balance)},
		{MethodName: MethodHistory, Handler: methodHandler(MethodHistory, LedgerServiceServer.History)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bankledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv with s.
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// LedgerServiceClient calls LedgerService.
type LedgerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLedgerServiceClient creates a client on cc.
func NewLedgerServiceClient(cc grpc.ClientConnInterface) *LedgerServiceClient {
	return &LedgerServiceClient{cc: cc}
}

// Call invokes method with in.
func (c *LedgerServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
