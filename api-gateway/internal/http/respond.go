package http

import (
	"encoding/json"
	"net/http"
	"strings"

	checkoutpb "github.com/fjod/storefront/checkout-service/pkg/checkoutpb"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const loginPath = "/login"

type ErrorResponse struct {
	Error    string            `json:"error"`
	Code     string            `json:"code,omitempty"`
	Details  string            `json:"details,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

var grpcToHTTP = map[codes.Code]struct {
	status int
	code   string
}{
	codes.InvalidArgument:    {http.StatusBadRequest, "invalid_argument"},
	codes.NotFound:           {http.StatusNotFound, "not_found"},
	codes.AlreadyExists:      {http.StatusConflict, "already_exists"},
	codes.FailedPrecondition: {http.StatusConflict, "failed_precondition"},
	codes.Unauthenticated:    {http.StatusUnauthorized, "unauthenticated"},
	codes.PermissionDenied:   {http.StatusForbidden, "permission_denied"},
	codes.ResourceExhausted:  {http.StatusTooManyRequests, "rate_limit_exceeded"},
	codes.Unavailable:        {http.StatusServiceUnavailable, "service_unavailable"},
	codes.DeadlineExceeded:   {http.StatusGatewayTimeout, "timeout"},
}

// handleGRPCError converts a gRPC status, including any checkout error
// details, into the JSON error body.
func handleGRPCError(w http.ResponseWriter, err error) {
	st, ok := status.FromError(err)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	resp := ErrorResponse{Error: st.Message(), Code: "internal_error"}
	httpStatus := http.StatusInternalServerError
	if m, ok := grpcToHTTP[st.Code()]; ok {
		httpStatus, resp.Code = m.status, m.code
	}

	for _, det := range st.Details() {
		switch d := det.(type) {
		case *errdetails.BadRequest:
			resp.Code = "validation_failed"
			resp.Fields = make(map[string]string, len(d.GetFieldViolations()))
			for _, v := range d.GetFieldViolations() {
				resp.Fields[v.GetField()] = v.GetDescription()
			}
		case *errdetails.ErrorInfo:
			if d.GetDomain() != checkoutpb.ErrorDomain {
				continue
			}
			resp.Code = strings.ToLower(d.GetReason())
			if orderID := d.GetMetadata()[checkoutpb.MetadataOrderID]; orderID != "" {
				resp.Details = "order " + orderID
			}
			if d.GetReason() == checkoutpb.ReasonAuthenticationRequired {
				resp.Redirect = loginRedirect(d.GetMetadata()[checkoutpb.MetadataReturnTo])
			}
		}
	}

	if httpStatus == http.StatusInternalServerError {
		zap.L().Error("upstream call failed", zap.Error(err))
		resp.Error = "internal server error"
	}
	respondJSON(w, httpStatus, resp)
}

func loginRedirect(returnTo string) string {
	if returnTo == "" {
		return loginPath
	}
	return loginPath + "?returnTo=" + returnTo
}
