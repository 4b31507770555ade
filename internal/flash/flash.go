// Package flash carries one-shot user feedback across the redirect that follows a form POST.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	cookieName = "flash"
	// maxMessages bounds the cookie well under the 4 KB browser limit.
	maxMessages = 5
)

// Level mirrors the storefront's alert styles.
type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Message is a single flash entry.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"message"`
}

func encode(msgs []Message) string {
	raw, _ := json.Marshal(msgs)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decode(value string) []Message {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}

// Add appends messages to the pending flash cookie, keeping only the newest few.
func Add(c *gin.Context, msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	if existing, err := c.Cookie(cookieName); err == nil {
		msgs = append(decode(existing), msgs...)
	}
	if len(msgs) > maxMessages {
		msgs = msgs[len(msgs)-maxMessages:]
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, encode(msgs), 0, "/", "", false, true)
}

// Pop returns and clears the pending messages.
func Pop(c *gin.Context) []Message {
	value, err := c.Cookie(cookieName)
	if err != nil {
		return nil
	}
	c.SetCookie(cookieName, "", -1, "/", "", false, true)
	return decode(value)
}

// WantsJSON reports whether the caller is a script rather than a browser form.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// Respond finishes a form POST: browsers get a 303 redirect with the flash cookie,
// JSON clients get the messages in the body with the given status.
func Respond(c *gin.Context, status int, redirectTo string, msgs ...Message) {
	if WantsJSON(c) {
		c.JSON(status, gin.H{"messages": msgs})
		return
	}
	Add(c, msgs...)
	c.Redirect(http.StatusSeeOther, redirectTo)
}

// Handler serves and clears pending messages for the storefront.
func Handler(c *gin.Context) {
	msgs := Pop(c)
	if msgs == nil {
		msgs = []Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
