// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by provider clients: the
// outbound client and classification of provider failures.
package httputil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// maxErrorBody bounds how much of a failed response body is kept in an error.
const maxErrorBody = 4 << 10

// ClassifyStatus maps an HTTP status code returned by a provider to an ErrorKind.
func ClassifyStatus(code int) types.ErrorKind {
	switch {
	case code == http.StatusTooManyRequests:
		return types.KindRateLimit
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return types.KindAuth
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return types.KindTimeout
	case code >= 500:
		return types.KindUnavailable
	case code >= 400:
		return types.KindInvalidRequest
	}
	return types.KindMalformed
}

// ClassifyTransport maps an error from http.Client.Do (no response received)
// to an ErrorKind.
func ClassifyTransport(err error) types.ErrorKind {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return types.KindTimeout
	}
	return types.KindNetwork
}

// TransportError wraps an http.Client.Do failure as a ProviderError.
func TransportError(provider, op string, err error) *types.ProviderError {
	return types.NewProviderError(provider, op, ClassifyTransport(err), 0, fmt.Errorf("calling %s API: %w", provider, err))
}

// CheckResponse returns nil for 2xx responses. Otherwise it drains up to
// maxErrorBody bytes of the body into a ProviderError classified by status.
// The caller still owns resp.Body and must close it.
func CheckResponse(provider, op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(body))
	cause := fmt.Errorf("%s API returned HTTP %d", provider, resp.StatusCode)
	if detail != "" {
		cause = fmt.Errorf("%s API returned HTTP %d: %s", provider, resp.StatusCode, detail)
	}
	return types.NewProviderError(provider, op, ClassifyStatus(resp.StatusCode), resp.StatusCode, cause)
}

// MalformedError reports a response that could not be decoded or was empty.
func MalformedError(provider, op string, err error) *types.ProviderError {
	return types.NewProviderError(provider, op, types.KindMalformed, 0, err)
}
