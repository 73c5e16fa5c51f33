package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const sessionCookieName = "ROUTINE_VISITOR"

// SessionData identifies a visitor across requests. The visitor id keys the durable favorites record,
// so the cookie lives as long as browser local storage would.
type SessionData struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

// SessionOptions configures the Session middleware.
type SessionOptions struct {
	SigningKey []byte
	Secure     bool
	MaxAge     time.Duration
	Logger     *zap.Logger
}

type sessionCodec struct {
	key    []byte
	secure bool
	maxAge time.Duration
}

// Session loads or initializes a session and stores it in request context.
func Session(opts SessionOptions) func(http.Handler) http.Handler {
	codec := newSessionCodec(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sd, fromCookie := codec.read(r)
			if sd.ID == "" {
				sd.ID = randID()
				sd.CreatedAt = time.Now().UTC()
				sd.UpdatedAt = sd.CreatedAt
				sd.CSRFToken = newCSRFToken()
				sd.dirty = true
			}
			ctx := context.WithValue(r.Context(), ctxKeySession, sd)
			rw := NewResponseRecorder(w)
			// cookie must go out with the headers, so write it just before the first write
			rw.SetBeforeWrite(func(w http.ResponseWriter) {
				if sd.dirty || !fromCookie {
					codec.write(w, sd)
				}
			})
			next.ServeHTTP(rw, r.WithContext(ctx))
			// nothing was written (e.g. HEAD): persist cookie now
			if !rw.Wrote() && (sd.dirty || !fromCookie) {
				codec.write(w, sd)
			}
		})
	}
}

func newSessionCodec(opts SessionOptions) *sessionCodec {
	key := opts.SigningKey
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			key = []byte("insecure-dev-key-please-set-ROUTINE_SESSION_SIGNING_KEY")
		}
		if opts.Logger != nil {
			opts.Logger.Warn("session: using ephemeral signing key; set ROUTINE_SESSION_SIGNING_KEY so visitors keep their favorites across restarts")
		}
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}
	return &sessionCodec{key: key, secure: opts.Secure, maxAge: maxAge}
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	return SessionFromContext(r.Context())
}

// SessionFromContext returns the session stored by the Session middleware, or an empty one.
func SessionFromContext(ctx context.Context) *SessionData {
	if v := ctx.Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// VisitorID returns the id of the visitor making the request.
func VisitorID(r *http.Request) string {
	return GetSession(r).ID
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// read parses and verifies the session cookie
func (c *sessionCodec) read(r *http.Request) (*SessionData, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return &SessionData{}, false
	}
	payloadPart, sigPart, ok := strings.Cut(cookie.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return &SessionData{}, false
	}
	if !hmac.Equal(sigB, c.sign(payloadB)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func (c *sessionCodec) write(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	val := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(c.sign(b))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(c.maxAge),
	})
}

func (c *sessionCodec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(payload)
	return mac.Sum(nil)
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
