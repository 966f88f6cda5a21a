// Package flash provides one-time portal notices persisted across redirects.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ashmont/clientdocs/internal/services/portal/platform/requestmeta"
)

// CookieName is the canonical cookie used for one-time portal notices.
const CookieName = "cd_flash"

// Kind classifies flash notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice stores one flash message reference. Key is a localization key, not
// display text.
type Notice struct {
	Kind Kind   `json:"kind"`
	Key  string `json:"key"`
}

// NoticeSuccess creates a success notice for the provided localization key.
func NoticeSuccess(key string) Notice {
	return Notice{Kind: KindSuccess, Key: key}
}

// normalized trims the notice and rejects blank keys and unknown kinds.
func (n Notice) normalized() (Notice, bool) {
	n.Key = strings.TrimSpace(n.Key)
	n.Kind = Kind(strings.ToLower(strings.TrimSpace(string(n.Kind))))
	if n.Key == "" {
		return Notice{}, false
	}
	switch n.Kind {
	case KindSuccess, KindInfo, KindWarning, KindError:
		return n, true
	}
	return Notice{}, false
}

// encode renders the notice as a cookie-safe string.
func (n Notice) encode() (string, bool) {
	payload, err := json.Marshal(n)
	if err != nil {
		return "", false
	}
	return base64.RawURLEncoding.EncodeToString(payload), true
}

func decode(raw string) (Notice, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Notice{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Notice{}, false
	}
	var notice Notice
	if err := json.Unmarshal(payload, &notice); err != nil {
		return Notice{}, false
	}
	return notice.normalized()
}

// Write stores a flash notice cookie for the next page render. Invalid
// notices are dropped rather than persisted.
func Write(w http.ResponseWriter, r *http.Request, notice Notice) {
	if w == nil {
		return
	}
	normalized, ok := notice.normalized()
	if !ok {
		return
	}
	encoded, ok := normalized.encode()
	if !ok {
		return
	}
	http.SetCookie(w, newCookie(r, encoded, 0))
}

// ReadAndClear reads and clears the flash notice cookie.
func ReadAndClear(w http.ResponseWriter, r *http.Request) (Notice, bool) {
	if r == nil {
		return Notice{}, false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return Notice{}, false
	}
	if w != nil {
		Clear(w, r)
	}
	return decode(cookie.Value)
}

// Clear expires any flash notice cookie.
func Clear(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	http.SetCookie(w, newCookie(r, "", -1))
}

func newCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	}
}
