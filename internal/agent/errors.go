package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rural-health-assistant/internal/apperr"
	"rural-health-assistant/internal/metrics"
)

// classify turns a transport or client library failure into the apperr
// taxonomy. Errors that are already classified pass through unchanged.
func classify(service string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.UpstreamUnavailable, err, fmt.Sprintf("%s timed out", service))
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		if gerr.Code == http.StatusServiceUnavailable || gerr.Code == http.StatusGatewayTimeout {
			return apperr.Wrap(apperr.UpstreamUnavailable, err, fmt.Sprintf("%s unavailable: %s", service, msg))
		}
		e := apperr.Upstream(gerr.Code, fmt.Sprintf("%s error: %s", service, msg))
		e.Err = err
		return e
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
			return apperr.Wrap(apperr.UpstreamUnavailable, err, fmt.Sprintf("%s unavailable: %s", service, st.Message()))
		default:
			e := apperr.Upstream(grpcHTTPStatus(st.Code()), fmt.Sprintf("%s error: %s", service, st.Message()))
			e.Err = err
			return e
		}
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		return apperr.Wrap(apperr.UpstreamUnavailable, err, fmt.Sprintf("failed to connect to %s", service))
	}

	// Anything else never produced a response we could read.
	return apperr.Wrap(apperr.UpstreamUnavailable, err, fmt.Sprintf("no response from %s", service))
}

func grpcHTTPStatus(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Internal, codes.DataLoss:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// observe records the outcome of one upstream call.
func observe(service string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		if kind := apperr.KindOf(err); kind != "" {
			result = string(kind)
		} else {
			result = "error"
		}
	}
	metrics.ObserveCall(service, result, started)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
