package grpc

import (
	"context"
	"errors"
	"net/url"
	"sort"

	d "github.com/fjod/storefront/checkout-service/domain"
	pb "github.com/fjod/storefront/checkout-service/pkg/checkoutpb"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Orchestrator interface {
	Submit(ctx context.Context, session d.Session, form d.CheckoutForm) (*d.Attempt, error)
	Retry(ctx context.Context, session d.Session, orderID string) (*d.Attempt, error)
	Verify(ctx context.Context, session d.Session, proof d.PaymentProof) (*d.Result, error)
	Resume(ctx context.Context, session d.Session, query url.Values) (*d.Result, error)
}

type CheckoutServiceServer struct {
	pb.UnimplementedCheckoutServiceServer
	service Orchestrator
	log     *zap.Logger
}

func NewCheckoutServiceServer(service Orchestrator, log *zap.Logger) *CheckoutServiceServer {
	return &CheckoutServiceServer{
		service: service,
		log:     log,
	}
}

func (h *CheckoutServiceServer) Submit(ctx context.Context, req *pb.SubmitRequest) (*pb.AttemptResponse, error) {
	if req.CartKey == "" {
		return nil, status.Error(codes.InvalidArgument, "cart_key is required")
	}
	if req.Form == nil {
		req.Form = &pb.CheckoutForm{}
	}

	attempt, err := h.service.Submit(ctx, toSession(req.CartKey, req.User), d.CheckoutForm{
		Name:       req.Form.Name,
		Email:      req.Form.Email,
		Phone:      req.Form.Phone,
		Address:    req.Form.Address,
		City:       req.Form.City,
		State:      req.Form.State,
		PostalCode: req.Form.PostalCode,
		Country:    req.Form.Country,
	})
	if err != nil {
		return nil, h.toStatus(err)
	}
	return toAttemptResponse(attempt), nil
}

func (h *CheckoutServiceServer) RetryPayment(ctx context.Context, req *pb.RetryPaymentRequest) (*pb.AttemptResponse, error) {
	if req.OrderId == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	attempt, err := h.service.Retry(ctx, toSession(req.CartKey, req.User), req.OrderId)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return toAttemptResponse(attempt), nil
}

func (h *CheckoutServiceServer) Verify(ctx context.Context, req *pb.VerifyRequest) (*pb.ResultResponse, error) {
	if req.GatewayOrderId == "" || req.PaymentId == "" || req.Signature == "" {
		return nil, status.Error(codes.InvalidArgument, "gateway_order_id, payment_id and signature are required")
	}

	res, err := h.service.Verify(ctx, d.Session{CartKey: req.CartKey}, d.PaymentProof{
		GatewayOrderID: req.GatewayOrderId,
		PaymentID:      req.PaymentId,
		Signature:      req.Signature,
	})
	if err != nil {
		return nil, h.toStatus(err)
	}
	return toResultResponse(res), nil
}

func (h *CheckoutServiceServer) Resume(ctx context.Context, req *pb.ResumeRequest) (*pb.ResultResponse, error) {
	q := url.Values{}
	for k, v := range req.Query {
		q.Set(k, v)
	}

	res, err := h.service.Resume(ctx, toSession(req.CartKey, req.User), q)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return toResultResponse(res), nil
}

func toSession(cartKey string, user *pb.Identity) d.Session {
	s := d.Session{CartKey: cartKey}
	if user != nil && user.UserId != "" {
		s.User = &d.Identity{UserID: user.UserId, Email: user.Email, Name: user.Name, Phone: user.Phone}
	}
	return s
}

func toAttemptResponse(a *d.Attempt) *pb.AttemptResponse {
	return &pb.AttemptResponse{
		State:   a.State.String(),
		OrderId: a.OrderID,
		Payment: &pb.PaymentDescriptor{
			SessionId: a.Descriptor.SessionID,
			Amount:    a.Descriptor.Amount,
			Currency:  a.Descriptor.Currency,
			Key:       a.Descriptor.Key,
		},
		Prefill: &pb.Prefill{
			Name:    a.Prefill.Name,
			Email:   a.Prefill.Email,
			Contact: a.Prefill.Contact,
		},
		CallbackUrl: a.CallbackURL,
	}
}

func toResultResponse(r *d.Result) *pb.ResultResponse {
	return &pb.ResultResponse{
		State:           r.State.String(),
		OrderId:         r.OrderID,
		OrderStatus:     r.OrderStatus,
		AlreadyCaptured: r.AlreadyCaptured,
		CartCleared:     r.CartCleared,
	}
}

func (h *CheckoutServiceServer) toStatus(err error) error {
	var (
		ve   *d.ValidationError
		auth *d.AuthenticationRequiredError
		oce  *d.OrderCreationError
		pge  *d.PaymentGatewayError
		pve  *d.PaymentVerificationError
	)

	switch {
	case errors.As(err, &ve):
		br := &errdetails.BadRequest{}
		fields := make([]string, 0, len(ve.Fields))
		for f := range ve.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       f,
				Description: ve.Fields[f],
			})
		}
		return withBadRequest(ve.Error(), br)
	case errors.As(err, &auth):
		return withInfo(codes.Unauthenticated, auth.Error(), pb.ReasonAuthenticationRequired,
			map[string]string{pb.MetadataReturnTo: auth.ReturnTo})
	case errors.Is(err, d.ErrEmptyCart):
		return withInfo(codes.FailedPrecondition, err.Error(), pb.ReasonEmptyCart, nil)
	case errors.Is(err, d.ErrOrderNotFound):
		return withInfo(codes.NotFound, err.Error(), pb.ReasonOrderNotFound, nil)
	case errors.As(err, &oce):
		h.log.Warn("order creation failed", zap.Error(err))
		return withInfo(codes.Unavailable, "could not create the order, please try again", pb.ReasonOrderCreationFailed, nil)
	case errors.As(err, &pge):
		code := codes.Unavailable
		switch status.Code(pge.Err) {
		case codes.FailedPrecondition, codes.AlreadyExists:
			code = codes.FailedPrecondition
		case codes.NotFound:
			code = codes.NotFound
		}
		return withInfo(code, pge.Error(), pb.ReasonPaymentGatewayError,
			map[string]string{pb.MetadataOrderID: pge.OrderID})
	case errors.As(err, &pve):
		md := map[string]string{}
		if pve.OrderID != "" {
			md[pb.MetadataOrderID] = pve.OrderID
		}
		return withInfo(codes.FailedPrecondition, "payment verification failed: "+pve.Reason, pb.ReasonVerificationFailed, md)
	}

	h.log.Error("checkout failed", zap.Error(err))
	return status.Errorf(codes.Internal, "checkout failed: %v", err)
}

func withInfo(code codes.Code, msg, reason string, md map[string]string) error {
	st, err := status.New(code, msg).WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: pb.ErrorDomain, Metadata: md})
	if err != nil {
		return status.Error(code, msg)
	}
	return st.Err()
}

func withBadRequest(msg string, br *errdetails.BadRequest) error {
	st, err := status.New(codes.InvalidArgument, msg).WithDetails(br)
	if err != nil {
		return status.Error(codes.InvalidArgument, msg)
	}
	return st.Err()
}
