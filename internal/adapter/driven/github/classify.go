package github

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

// classify maps a go-github call failure to the closed model.APIError
// taxonomy. The original error is preserved as the cause.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return &model.APIError{
			Kind:           model.ErrorRateLimited,
			RateLimitReset: rateErr.Rate.Reset.Time,
			Err:            err,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var reset time.Time
		if abuseErr.RetryAfter != nil {
			reset = time.Now().Add(*abuseErr.RetryAfter)
		}
		return &model.APIError{
			Kind:           model.ErrorRateLimited,
			RateLimitReset: reset,
			Err:            err,
		}
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return classifyStatus(respErr, err)
	}

	var jsonSyntaxErr *json.SyntaxError
	var jsonTypeErr *json.UnmarshalTypeError
	if errors.As(err, &jsonSyntaxErr) || errors.As(err, &jsonTypeErr) {
		return &model.APIError{Kind: model.ErrorMalformed, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &model.APIError{Kind: model.ErrorNetwork, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &model.APIError{Kind: model.ErrorNetwork, Err: err}
	}

	return &model.APIError{Kind: model.ErrorUnknown, Err: err}
}

// classifyStatus maps an ErrorResponse with a known HTTP status.
func classifyStatus(respErr *gh.ErrorResponse, cause error) error {
	switch code := respErr.Response.StatusCode; {
	case code == http.StatusUnauthorized:
		return &model.APIError{Kind: model.ErrorUnauthorized, Err: cause}

	case code == http.StatusForbidden:
		// A 403 is rate limiting when the response says so; otherwise it's a
		// plain permission failure.
		if reset, ok := forbiddenRateLimit(respErr); ok {
			return &model.APIError{Kind: model.ErrorRateLimited, RateLimitReset: reset, Err: cause}
		}
		return &model.APIError{Kind: model.ErrorForbidden, Err: cause}

	case code == http.StatusNotFound:
		return &model.APIError{Kind: model.ErrorNotFound, Err: cause}

	case code >= 500:
		return &model.APIError{Kind: model.ErrorServer, Err: cause}

	default:
		return &model.APIError{Kind: model.ErrorUnknown, Err: cause}
	}
}

// forbiddenRateLimit reports whether a 403 response is a rate-limit response,
// and derives the reset time from its headers when possible. GitHub signals
// primary exhaustion with x-ratelimit-remaining: 0 and secondary limits with
// Retry-After or a "rate limit" message.
func forbiddenRateLimit(respErr *gh.ErrorResponse) (time.Time, bool) {
	header := respErr.Response.Header

	if retryAfter := header.Get("Retry-After"); retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil {
			return time.Now().Add(time.Duration(secs) * time.Second), true
		}
		return time.Time{}, true
	}

	if header.Get("X-Ratelimit-Remaining") == "0" {
		if resetUnix, err := strconv.ParseInt(header.Get("X-Ratelimit-Reset"), 10, 64); err == nil {
			return time.Unix(resetUnix, 0), true
		}
		return time.Time{}, true
	}

	if strings.Contains(strings.ToLower(respErr.Message), "rate limit") {
		return time.Time{}, true
	}

	return time.Time{}, false
}
