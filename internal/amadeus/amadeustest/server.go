// Package amadeustest serves a scripted stand-in for the flight-offers API.
package amadeustest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

const (
	ClientID     = "test-client"
	ClientSecret = "test-secret"

	tokenPath        = "/v1/security/oauth2/token"
	flightOffersPath = "/v2/shopping/flight-offers"
)

// Response is one scripted answer of the search endpoint.
type Response struct {
	Status     int
	RetryAfter string
	Body       interface{}
}

type Server struct {
	*httptest.Server

	mu             sync.Mutex
	issued         int
	valid          map[string]bool
	queue          []Response
	routes         map[string][]json.RawMessage
	searchRequests []url.Values
}

func NewServer() *Server {
	s := &Server{
		valid:  make(map[string]bool),
		routes: make(map[string][]json.RawMessage),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.POST(tokenPath, s.token)
	e.GET(flightOffersPath, s.search)

	s.Server = httptest.NewServer(e)
	return s
}

func routeKey(origin, destination, date, returnDate string) string {
	return origin + "|" + destination + "|" + date + "|" + returnDate
}

// SetOffers registers the offers returned for a route and dates. Leave
// returnDate empty for one-way searches.
func (s *Server) SetOffers(origin, destination, date, returnDate string, offers ...json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := routeKey(origin, destination, date, returnDate)
	s.routes[key] = append(s.routes[key], offers...)
}

// Enqueue scripts the next search answers. They are consumed in order before
// falling back to the registered routes.
func (s *Server) Enqueue(responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append(s.queue, responses...)
}

// RevokeTokens invalidates every issued token, as an expiry would.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.valid = make(map[string]bool)
}

func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.issued
}

func (s *Server) SearchRequests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]url.Values, len(s.searchRequests))
	copy(out, s.searchRequests)
	return out
}

func (s *Server) token(c echo.Context) error {
	if c.FormValue("grant_type") != "client_credentials" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":             "unsupported_grant_type",
			"error_description": "Only client_credentials value is allowed",
		})
	}
	if c.FormValue("client_id") != ClientID || c.FormValue("client_secret") != ClientSecret {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error":             "invalid_client",
			"error_description": "Client credentials are invalid",
		})
	}

	s.mu.Lock()
	s.issued++
	tok := fmt.Sprintf("token-%d", s.issued)
	s.valid[tok] = true
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"type":         "amadeusOAuth2Token",
		"access_token": tok,
		"token_type":   "Bearer",
		"expires_in":   1799,
		"state":        "approved",
	})
}

func (s *Server) search(c echo.Context) error {
	q := c.QueryParams()
	tok := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	s.searchRequests = append(s.searchRequests, q)
	authorized := s.valid[tok]
	var scripted *Response
	if authorized && len(s.queue) > 0 {
		r := s.queue[0]
		s.queue = s.queue[1:]
		scripted = &r
	}
	offers := s.routes[routeKey(q.Get("originLocationCode"), q.Get("destinationLocationCode"), q.Get("departureDate"), q.Get("returnDate"))]
	s.mu.Unlock()

	if !authorized {
		return c.JSON(http.StatusUnauthorized, errorBody(http.StatusUnauthorized, 38190, "Invalid access token"))
	}

	if scripted != nil {
		if scripted.RetryAfter != "" {
			c.Response().Header().Set("Retry-After", scripted.RetryAfter)
		}
		body := scripted.Body
		if body == nil {
			body = errorBody(scripted.Status, 38194, http.StatusText(scripted.Status))
		}
		return c.JSON(scripted.Status, body)
	}

	if offers == nil {
		offers = []json.RawMessage{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"meta": map[string]int{"count": len(offers)},
		"data": offers,
	})
}

func errorBody(status, code int, title string) map[string]interface{} {
	return map[string]interface{}{
		"errors": []map[string]interface{}{{
			"status": status,
			"code":   code,
			"title":  title,
		}},
	}
}
