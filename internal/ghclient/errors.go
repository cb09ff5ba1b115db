package ghclient

import (
	"context"
	"errors"
	"net"
	"net/http"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/codewatch/internal/model"
	"golang.org/x/oauth2"
)

// classify wraps err in a *model.Error for subject. Errors that are
// already classified pass through unchanged.
func classify(err error, subject string) error {
	if err == nil {
		return nil
	}
	var classified *model.Error
	if errors.As(err, &classified) {
		return err
	}
	kind, msg := kindOf(err)
	return &model.Error{Kind: kind, Subject: subject, Message: msg, Err: err}
}

func kindOf(err error) (model.Kind, string) {
	var (
		rateErr     *gh.RateLimitError
		abuseErr    *gh.AbuseRateLimitError
		respErr     *gh.ErrorResponse
		retrieveErr *oauth2.RetrieveError
		netErr      net.Error
	)

	switch {
	// Must come before net.Error: the transport error arrives inside *url.Error
	case errors.Is(err, ErrRateLimited):
		return model.KindRemote, "API rate limit exceeded"
	case errors.As(err, &rateErr):
		return model.KindRemote, rateErr.Message
	case errors.As(err, &abuseErr):
		return model.KindRemote, abuseErr.Message
	case errors.As(err, &respErr):
		return kindOfStatus(respErr), respErr.Message
	case errors.As(err, &retrieveErr):
		msg := retrieveErr.ErrorDescription
		if msg == "" {
			msg = retrieveErr.ErrorCode
		}
		return model.KindAuthenticationFailed, msg
	case errors.Is(err, context.DeadlineExceeded):
		return model.KindNetwork, "request timed out"
	case errors.Is(err, context.Canceled):
		return model.KindNetwork, "request canceled"
	case errors.As(err, &netErr):
		return model.KindNetwork, "connection failed"
	}
	return model.KindNetwork, ""
}

func kindOfStatus(respErr *gh.ErrorResponse) model.Kind {
	if respErr.Response == nil {
		return model.KindRemote
	}
	switch respErr.Response.StatusCode {
	case http.StatusNotFound:
		return model.KindNotFound
	case http.StatusUnauthorized:
		return model.KindAuthenticationFailed
	default:
		return model.KindRemote
	}
}

// hasStatus reports whether err is a GitHub error response with code.
func hasStatus(err error, code int) bool {
	var respErr *gh.ErrorResponse
	return errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == code
}
