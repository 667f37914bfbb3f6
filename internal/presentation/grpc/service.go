package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"

	"github.com/nikhilpunky/manaja2/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "lending.v1.LendingService"

// LendingServiceServer is the server API for LendingService. Messages are the
// application DTOs carried over the JSON codec.
type LendingServiceServer interface {
	VerifyKYC(context.Context, *dto.VerifyKYCRequest) (*dto.KYCResponse, error)
	SubmitLoanApplication(context.Context, *dto.SubmitLoanApplicationRequest) (*dto.SubmitLoanApplicationResponse, error)
	CheckEligibility(context.Context, *dto.CheckEligibilityRequest) (*dto.EligibilityResponse, error)
	MakeRepayment(context.Context, *dto.MakeRepaymentRequest) (*dto.RepaymentResponse, error)
	GetLoanApplication(context.Context, *dto.GetLoanApplicationRequest) (*dto.LoanApplicationResponse, error)
	ListLoanApplications(context.Context, *dto.ListLoanApplicationsRequest) (*dto.LoanApplicationListResponse, error)
	GetLoan(context.Context, *dto.GetLoanRequest) (*dto.LoanResponse, error)
	ListLoans(context.Context, *dto.ListLoansRequest) (*dto.LoanListResponse, error)
	DisburseLoan(context.Context, *dto.DisburseLoanRequest) (*dto.LoanResponse, error)
	ListRepayments(context.Context, *dto.ListRepaymentsRequest) (*dto.RepaymentListResponse, error)
	ListLoanProducts(context.Context, *dto.ListLoanProductsRequest) (*dto.LoanProductListResponse, error)
}

// RegisterLendingServiceServer registers srv with the gRPC server.
func RegisterLendingServiceServer(s grpclib.ServiceRegistrar, srv LendingServiceServer) {
	s.RegisterService(&lendingServiceDesc, srv)
}

var lendingServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LendingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "VerifyKYC", Handler: unary("VerifyKYC", LendingServiceServer.VerifyKYC)},
		{MethodName: "SubmitLoanApplication", Handler: unary("SubmitLoanApplication", LendingServiceServer.SubmitLoanApplication)},
		{MethodName: "CheckEligibility", Handler: unary("CheckEligibility", LendingServiceServer.CheckEligibility)},
		{MethodName: "MakeRepayment", Handler: unary("MakeRepayment", LendingServiceServer.MakeRepayment)},
		{MethodName: "GetLoanApplication", Handler: unary("GetLoanApplication", LendingServiceServer.GetLoanApplication)},
		{MethodName: "ListLoanApplications", Handler: unary("ListLoanApplications", LendingServiceServer.ListLoanApplications)},
		{MethodName: "GetLoan", Handler: unary("GetLoan", LendingServiceServer.GetLoan)},
		{MethodName: "ListLoans", Handler: unary("ListLoans", LendingServiceServer.ListLoans)},
		{MethodName: "DisburseLoan", Handler: unary("DisburseLoan", LendingServiceServer.DisburseLoan)},
		{MethodName: "ListRepayments", Handler: unary("ListRepayments", LendingServiceServer.ListRepayments)},
		{MethodName: "ListLoanProducts", Handler: unary("ListLoanProducts", LendingServiceServer.ListLoanProducts)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "lending/v1/lending.proto",
}

// unary builds the method handler that decodes the request, runs the
// interceptor chain and dispatches to the server method.
func unary[Req, Resp any](
	method string,
	call func(LendingServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LendingServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LendingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
