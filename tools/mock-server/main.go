// Package main implements a mock eBay server for local development. It
// simulates the consent page, the OAuth token endpoint, the Identity API, the
// Sell Inventory API, and the Trading API without real eBay credentials.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	userTokenTTL = 7200
	appTokenTTL  = 7200
)

type inventoryItem struct {
	SKU       string `json:"sku"`
	Condition string `json:"condition"`
	Product   struct {
		Title string `json:"title"`
	} `json:"product"`
	Availability struct {
		ShipToLocationAvailability struct {
			Quantity int `json:"quantity"`
		} `json:"shipToLocationAvailability"`
	} `json:"availability"`
}

func newItem(sku, title string, qty int) inventoryItem {
	it := inventoryItem{SKU: sku, Condition: "USED_EXCELLENT"}
	it.Product.Title = title
	it.Availability.ShipToLocationAvailability.Quantity = qty
	return it
}

var defaultInventory = []inventoryItem{
	newItem("DELL-R630-01", "Dell PowerEdge R630 2x E5-2680v4 128GB", 2),
	newItem("DDR4-32G-RDIMM", "Samsung 32GB DDR4-2400 ECC RDIMM", 40),
	newItem("HBA-9300-8I", "LSI 9300-8i SAS HBA IT Mode", 6),
}

// mockEbay holds issued codes and tokens.
type mockEbay struct {
	log      *slog.Logger
	callback string
	decline  bool
	user     string

	mu            sync.Mutex
	codes         map[string]string // code -> scope
	refreshTokens map[string]string // refresh -> scope
	accessTokens  map[string]time.Time
	inventory     []inventoryItem
}

func newMockEbay(log *slog.Logger, callback, user string, decline bool) *mockEbay {
	return &mockEbay{
		log:           log,
		callback:      callback,
		decline:       decline,
		user:          user,
		codes:         make(map[string]string),
		refreshTokens: make(map[string]string),
		accessTokens:  make(map[string]time.Time),
		inventory:     defaultInventory,
	}
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	callback := flag.String("callback", "http://localhost:8080/oauth/callback", "URL the consent page redirects to")
	user := flag.String("user", "mock_seller", "username returned by the Identity API")
	decline := flag.Bool("decline", false, "decline every consent request")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := newMockEbay(logger, *callback, *user, *decline)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock eBay server", "addr", addr, "callback", *callback)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, m.routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (m *mockEbay) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth2/authorize", m.authorizeHandler)
	mux.HandleFunc("POST /identity/v1/oauth2/token", m.tokenHandler)
	mux.HandleFunc("GET /commerce/identity/v1/user/", m.identityHandler)
	mux.HandleFunc("GET /sell/inventory/v1/inventory_item", m.listInventoryHandler)
	mux.HandleFunc("GET /sell/inventory/v1/inventory_item/{sku}", m.getInventoryHandler)
	mux.HandleFunc("POST /ws/api.dll", m.tradingHandler)
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func randomToken(prefix string) string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return prefix + hex.EncodeToString(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func oauthError(w http.ResponseWriter, status int, code, desc string) {
	writeJSON(w, status, map[string]string{"error": code, "error_description": desc})
}

func restError(w http.ResponseWriter, status, errorID int, category, msg string) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]any{{
			"errorId":  errorID,
			"domain":   "API_MOCK",
			"category": category,
			"message":  msg,
		}},
	})
}

// authorizeHandler stands in for the consent page: it approves (or declines)
// immediately and redirects to the callback.
func (m *mockEbay) authorizeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := url.Parse(m.callback)
	if err != nil {
		http.Error(w, "bad callback", http.StatusInternalServerError)
		return
	}

	out := target.Query()
	if s := q.Get("state"); s != "" {
		out.Set("state", s)
	}
	if m.decline {
		out.Set("error", "access_denied")
		out.Set("error_description", "user declined")
	} else {
		code := randomToken("v^1.1#code-")
		m.mu.Lock()
		m.codes[code] = q.Get("scope")
		m.mu.Unlock()
		out.Set("code", code)
		out.Set("expires_in", "299")
	}
	target.RawQuery = out.Encode()

	m.log.Info("consent", "declined", m.decline, "client_id", q.Get("client_id"))
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (m *mockEbay) tokenHandler(w http.ResponseWriter, r *http.Request) {
	// Basic Auth must be present; credentials are not checked.
	if _, _, ok := r.BasicAuth(); !ok {
		m.log.Warn("token request missing Basic Auth header")
		oauthError(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
		return
	}
	if err := r.ParseForm(); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	switch grant := r.PostForm.Get("grant_type"); grant {
	case "client_credentials":
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "mock-app-token-v1-" + strconv.FormatInt(int64(os.Getpid()), 16),
			"expires_in":   appTokenTTL,
			"token_type":   "Application Access Token",
		})
		m.log.Info("issued application token")
	case "authorization_code":
		m.exchangeCode(w, r.PostForm.Get("code"))
	case "refresh_token":
		m.refresh(w, r.PostForm.Get("refresh_token"))
	default:
		oauthError(w, http.StatusBadRequest, "unsupported_grant_type", "grant type "+grant+" is not supported")
	}
}

func (m *mockEbay) exchangeCode(w http.ResponseWriter, code string) {
	m.mu.Lock()
	scope, ok := m.codes[code]
	delete(m.codes, code)
	m.mu.Unlock()

	if !ok {
		oauthError(w, http.StatusBadRequest, "invalid_grant", "the provided authorization grant code is invalid or was issued to another client")
		return
	}

	access, refresh := randomToken("v^1.1#access-"), randomToken("v^1.1#refresh-")
	m.mu.Lock()
	m.accessTokens[access] = time.Now().Add(userTokenTTL * time.Second)
	m.refreshTokens[refresh] = scope
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":             access,
		"expires_in":               userTokenTTL,
		"refresh_token":            refresh,
		"refresh_token_expires_in": 47304000,
		"token_type":               "User Access Token",
	})
	m.log.Info("exchanged authorization code")
}

func (m *mockEbay) refresh(w http.ResponseWriter, refreshToken string) {
	m.mu.Lock()
	scope, ok := m.refreshTokens[refreshToken]
	m.mu.Unlock()

	if !ok {
		oauthError(w, http.StatusBadRequest, "invalid_grant", "the provided authorization refresh token is invalid or was issued to another client")
		return
	}

	access := randomToken("v^1.1#access-")
	m.mu.Lock()
	m.accessTokens[access] = time.Now().Add(userTokenTTL * time.Second)
	m.mu.Unlock()

	resp := map[string]any{
		"access_token": access,
		"expires_in":   userTokenTTL,
		"token_type":   "User Access Token",
	}
	if scope != "" {
		resp["scope"] = scope
	}
	writeJSON(w, http.StatusOK, resp)
	m.log.Info("refreshed user token")
}

// validToken reports whether token is a live user access token.
func (m *mockEbay) validToken(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.accessTokens[token]
	return ok && time.Now().Before(exp)
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (m *mockEbay) authorized(w http.ResponseWriter, r *http.Request) bool {
	if m.validToken(bearer(r)) {
		return true
	}
	restError(w, http.StatusUnauthorized, 1001, "REQUEST", "Invalid access token")
	return false
}

func (m *mockEbay) identityHandler(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"userId":   "mock-" + m.user,
		"username": m.user,
	})
}

func (m *mockEbay) listInventoryHandler(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}

	limit := 25
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	page := []inventoryItem{}
	if offset < len(m.inventory) {
		page = m.inventory[offset:min(offset+limit, len(m.inventory))]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"inventoryItems": page,
		"total":          len(m.inventory),
		"size":           len(page),
		"limit":          limit,
		"offset":         offset,
	})
}

func (m *mockEbay) getInventoryHandler(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}
	sku := r.PathValue("sku")
	for _, it := range m.inventory {
		if it.SKU == sku {
			writeJSON(w, http.StatusOK, it)
			return
		}
	}
	restError(w, http.StatusNotFound, 25702, "REQUEST", "SKU "+sku+" was not found")
}

type tradingResponse struct {
	XMLName   xml.Name       `xml:"urn:ebay:apis:eBLBaseComponents Response"`
	Timestamp string         `xml:"Timestamp"`
	Ack       string         `xml:"Ack"`
	Errors    []tradingError `xml:"Errors,omitempty"`
	Version   string         `xml:"Version"`
}

type tradingError struct {
	ShortMessage        string `xml:"ShortMessage"`
	LongMessage         string `xml:"LongMessage"`
	ErrorCode           int    `xml:"ErrorCode"`
	SeverityCode        string `xml:"SeverityCode"`
	ErrorClassification string `xml:"ErrorClassification"`
}

// tradingHandler answers any call with an empty success document named after
// the call, or an auth failure when the IAF token is unknown.
func (m *mockEbay) tradingHandler(w http.ResponseWriter, r *http.Request) {
	call := r.Header.Get("X-EBAY-API-CALL-NAME")
	if call == "" {
		http.Error(w, "missing X-EBAY-API-CALL-NAME", http.StatusBadRequest)
		return
	}

	resp := tradingResponse{
		XMLName:   xml.Name{Space: "urn:ebay:apis:eBLBaseComponents", Local: call + "Response"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Ack:       "Success",
		Version:   "1227",
	}
	if !m.validToken(r.Header.Get("X-EBAY-API-IAF-TOKEN")) {
		resp.Ack = "Failure"
		resp.Errors = []tradingError{{
			ShortMessage:        "Auth token is invalid.",
			LongMessage:         "Validation of the authentication token in API request failed.",
			ErrorCode:           931,
			SeverityCode:        "Error",
			ErrorClassification: "RequestError",
		}}
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	xml.NewEncoder(w).Encode(resp)
	m.log.Info("trading call", "call", call, "ack", resp.Ack)
}
