package ebay

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// ResponseError is a failed response from an eBay endpoint, kept raw so the
// classifier can inspect the status and body.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

// Error implements error.
func (e *ResponseError) Error() string {
	const maxBody = 256
	body := e.Body
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	if len(body) == 0 {
		return fmt.Sprintf("eBay API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("eBay API error (status %d): %s", e.StatusCode, body)
}

// ErrorDetail is one entry of eBay's structured error list.
type ErrorDetail struct {
	ErrorID     int    `json:"errorId"`
	Domain      string `json:"domain"`
	Category    string `json:"category"`
	Message     string `json:"message"`
	LongMessage string `json:"longMessage,omitempty"`
}

type restErrorBody struct {
	Errors           []ErrorDetail `json:"errors"`
	Error            string        `json:"error"`
	ErrorDescription string        `json:"error_description"`
}

// tradingResponse matches the envelope shared by every Trading API response
// regardless of call name.
type tradingResponse struct {
	Ack    string         `xml:"Ack"`
	Errors []tradingError `xml:"Errors"`
}

type tradingError struct {
	ShortMessage        string `xml:"ShortMessage"`
	LongMessage         string `xml:"LongMessage"`
	ErrorCode           int    `xml:"ErrorCode"`
	SeverityCode        string `xml:"SeverityCode"`
	ErrorClassification string `xml:"ErrorClassification"`
}

// Trading API error classifications mapped onto REST error categories.
var tradingCategories = map[string]string{
	"RequestError": CategoryRequest,
	"SystemError":  CategoryApplication,
}

// parsedBody is what could be recovered from a failure body.
type parsedBody struct {
	details   []ErrorDetail
	oauthCode string
	oauthDesc string
}

func parseBody(body []byte) parsedBody {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return parsedBody{}
	}

	switch trimmed[0] {
	case '{':
		var rb restErrorBody
		if err := json.Unmarshal(trimmed, &rb); err != nil {
			return parsedBody{}
		}
		return parsedBody{
			details:   rb.Errors,
			oauthCode: rb.Error,
			oauthDesc: rb.ErrorDescription,
		}
	case '<':
		tr, err := decodeTrading(trimmed)
		if err != nil {
			return parsedBody{}
		}
		return parsedBody{details: tr.errorDetails()}
	default:
		return parsedBody{}
	}
}

func decodeTrading(body []byte) (*tradingResponse, error) {
	var tr tradingResponse
	if err := xml.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decoding trading response: %w", err)
	}
	return &tr, nil
}

// failed reports whether the Trading API envelope signals failure.
func (t *tradingResponse) failed() bool {
	return t.Ack == "Failure" || t.Ack == "PartialFailure"
}

// errorDetails converts error-severity entries to ErrorDetail. Warnings are
// dropped.
func (t *tradingResponse) errorDetails() []ErrorDetail {
	var out []ErrorDetail
	for _, e := range t.Errors {
		if e.SeverityCode != "" && e.SeverityCode != "Error" {
			continue
		}
		msg := e.LongMessage
		if msg == "" {
			msg = e.ShortMessage
		}
		out = append(out, ErrorDetail{
			ErrorID:  e.ErrorCode,
			Domain:   "TradingAPI",
			Category: tradingCategories[e.ErrorClassification],
			Message:  msg,
		})
	}
	return out
}
