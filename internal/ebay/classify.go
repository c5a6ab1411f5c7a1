package ebay

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"golang.org/x/oauth2"
)

// failure is the raw error reduced to the facts the tiers inspect.
type failure struct {
	status    int
	details   []ErrorDetail
	oauthCode string
	oauthDesc string
	transport bool
}

// tier is one step of the classification chain. It returns nil when the
// failure carries nothing it can interpret.
type tier struct {
	name     string
	classify func(f *failure) *Error
}

// tiers run in order; the first non-nil result wins.
var tiers = []tier{
	{name: "error-id", classify: byErrorID},
	{name: "category", classify: byCategory},
	{name: "oauth-code", classify: byOAuthCode},
	{name: "http-status", classify: byStatus},
	{name: "transport", classify: byTransport},
}

// Classify maps an arbitrary upstream failure to a normalized *Error. op names
// the operation for diagnostics. An error that already is (or wraps) an *Error
// is returned unchanged. Classify performs no I/O and returns equal results
// for equal inputs. It returns nil for a nil error.
func Classify(op string, raw error) *Error {
	if raw == nil {
		return nil
	}

	var ne *Error
	if errors.As(raw, &ne) {
		return ne
	}

	f := inspect(raw)
	for _, t := range tiers {
		if e := t.classify(f); e != nil {
			e.Op = op
			e.cause = raw
			return e
		}
	}

	e := newError(KindServer, http.StatusInternalServerError, raw.Error())
	e.Op = op
	e.cause = raw
	return e
}

// ClassifyResponse classifies a failed HTTP response given its status and body.
func ClassifyResponse(op string, status int, body []byte) *Error {
	return Classify(op, &ResponseError{StatusCode: status, Body: body})
}

func inspect(raw error) *failure {
	f := &failure{}

	var re *ResponseError
	var rte *oauth2.RetrieveError
	switch {
	case errors.As(raw, &re):
		f.status = re.StatusCode
		f.apply(parseBody(re.Body))
	case errors.As(raw, &rte):
		if rte.Response != nil {
			f.status = rte.Response.StatusCode
		}
		f.apply(parseBody(rte.Body))
		if f.oauthCode == "" {
			f.oauthCode = rte.ErrorCode
			f.oauthDesc = rte.ErrorDescription
		}
	default:
		f.transport = isTransport(raw)
	}

	return f
}

func (f *failure) apply(p parsedBody) {
	f.details = p.details
	f.oauthCode = p.oauthCode
	f.oauthDesc = p.oauthDesc
}

func byErrorID(f *failure) *Error {
	if len(f.details) == 0 {
		return nil
	}
	d := f.details[0]
	known, ok := knownErrors[d.ErrorID]
	if !ok {
		return nil
	}

	msg := d.Message
	if msg == "" {
		msg = known.message
	}
	e := newError(known.kind, known.status, msg)
	e.UpstreamCode = d.ErrorID
	e.Domain = d.Domain
	e.Category = d.Category
	return e
}

func byCategory(f *failure) *Error {
	if len(f.details) == 0 {
		return nil
	}
	d := f.details[0]

	var kind Kind
	switch strings.ToUpper(d.Category) {
	case CategoryRequest:
		kind = KindValidation
		if mentionsAuth(d.Message) {
			kind = KindAuthorization
		}
	case CategoryBusiness:
		kind = KindBusinessRule
	case CategoryApplication:
		kind = KindServiceUnavailable
	default:
		return nil
	}

	e := newError(kind, errorStatus(f.status, kind), d.Message)
	e.UpstreamCode = d.ErrorID
	e.Domain = d.Domain
	e.Category = d.Category
	return e
}

func byOAuthCode(f *failure) *Error {
	if f.oauthCode == "" {
		return nil
	}
	kind, ok := oauthErrorKinds[f.oauthCode]
	if !ok {
		return nil
	}

	msg := f.oauthCode
	if f.oauthDesc != "" {
		msg += ": " + f.oauthDesc
	}
	return newError(kind, kind.defaultStatus(), msg)
}

func byStatus(f *failure) *Error {
	var kind Kind
	switch {
	case f.status == http.StatusBadRequest || f.status == http.StatusUnprocessableEntity:
		kind = KindValidation
	case f.status == http.StatusUnauthorized:
		kind = KindAuthorization
	case f.status == http.StatusForbidden:
		kind = KindPermission
	case f.status == http.StatusNotFound:
		kind = KindResourceNotFound
	case f.status == http.StatusConflict:
		kind = KindBusinessRule
	case f.status == http.StatusTooManyRequests:
		kind = KindRateLimit
	case f.status >= http.StatusInternalServerError:
		kind = KindServiceUnavailable
	default:
		return nil
	}
	return newError(kind, f.status, http.StatusText(f.status))
}

func byTransport(f *failure) *Error {
	if !f.transport {
		return nil
	}
	return newError(KindConnection, http.StatusServiceUnavailable, "upstream unreachable")
}

// errorStatus keeps the upstream status when it is an error status and falls
// back to the kind's default otherwise (Trading API failures arrive as 200).
func errorStatus(status int, kind Kind) int {
	if status >= http.StatusBadRequest {
		return status
	}
	return kind.defaultStatus()
}

func mentionsAuth(msg string) bool {
	m := strings.ToLower(msg)
	for _, w := range []string{"token", "auth", "credential"} {
		if strings.Contains(m, w) {
			return true
		}
	}
	return false
}

func isTransport(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
