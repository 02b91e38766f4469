package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieStore persists a token string across size-limited cookie slots.
//
// A single cookie is capped at 4096 bytes including name and attributes, so
// a token embedding a capability list can exceed one slot; the store splits
// it into ordered fragments and rejoins them on read. All fragments for one
// write go out on one response, so the set is committed together: a reader
// sees either the previous complete set or the new one, never a mix.
type CookieStore struct {
	// Name is the base slot name; overflow fragments are Name.1, Name.2, ...
	Name string

	// ChunkSize is the per-slot byte ceiling.
	ChunkSize int

	// MaxAge bounds every fragment's lifetime; keep it equal to the token TTL.
	MaxAge time.Duration

	// Secure requires HTTPS transport for the cookies. Disabled only in
	// local development.
	Secure bool
}

// Write replaces the stored fragment set with fragments of value.
// Overflow slots left over from a previous, longer token are expired in the
// same response so a later read cannot see a mixed set.
func (s *CookieStore) Write(c *gin.Context, value string) {
	if c == nil {
		return
	}
	frags := splitChunks(s.Name, value, s.ChunkSize)

	current := make(map[string]struct{}, len(frags))
	for _, f := range frags {
		current[f.Name] = struct{}{}
	}
	for _, name := range s.storedNames(c) {
		if _, ok := current[name]; !ok {
			s.expire(c, name)
		}
	}

	for _, f := range frags {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     f.Name,
			Value:    f.Value,
			Path:     "/",
			MaxAge:   int(s.MaxAge.Seconds()),
			HttpOnly: true,
			Secure:   s.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Read reassembles the token from whatever fragments the request carries.
// A missing request (non-interactive render context) or an empty fragment
// set yields "", which callers treat as "no session".
func (s *CookieStore) Read(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	var frags []Fragment
	for _, ck := range c.Request.Cookies() {
		if _, ok := fragmentIndex(s.Name, ck.Name); !ok {
			continue
		}
		frags = append(frags, Fragment{Name: ck.Name, Value: ck.Value})
	}
	return reassemble(s.Name, frags)
}

// Clear expires every fragment of the set. Idempotent: clearing an absent
// session is not an error.
func (s *CookieStore) Clear(c *gin.Context) {
	if c == nil {
		return
	}
	cleared := map[string]struct{}{}
	for _, name := range s.storedNames(c) {
		s.expire(c, name)
		cleared[name] = struct{}{}
	}
	// The base slot may be absent from the request (already expired
	// client-side); expire it anyway so Clear is unconditional.
	if _, ok := cleared[s.Name]; !ok {
		s.expire(c, s.Name)
	}
}

func (s *CookieStore) storedNames(c *gin.Context) []string {
	if c.Request == nil {
		return nil
	}
	var names []string
	for _, ck := range c.Request.Cookies() {
		if _, ok := fragmentIndex(s.Name, ck.Name); ok {
			names = append(names, ck.Name)
		}
	}
	return names
}

func (s *CookieStore) expire(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
