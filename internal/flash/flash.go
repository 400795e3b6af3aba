// Package flash carries one-shot notifications across a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const LevelSuccess = "success"

type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func Success(text string) Message {
	return Message{Level: LevelSuccess, Text: text}
}

// Store queues messages on one response and hands them out once on a later request.
type Store interface {
	Add(w http.ResponseWriter, r *http.Request, msg Message) error
	Pop(w http.ResponseWriter, r *http.Request) ([]Message, error)
}

const cookieName = "flash"

// CookieStore keeps pending messages in the client's cookie.
type CookieStore struct {
	Secure bool
}

func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{Secure: secure}
}

func (s *CookieStore) Add(w http.ResponseWriter, r *http.Request, msg Message) error {
	pending := readCookie(r)
	pending = append(pending, msg)

	payload, err := json.Marshal(pending)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *CookieStore) Pop(w http.ResponseWriter, r *http.Request) ([]Message, error) {
	if _, err := r.Cookie(cookieName); err != nil {
		return nil, nil
	}

	messages := readCookie(r)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return messages, nil
}

func readCookie(r *http.Request) []Message {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var messages []Message
	if err := json.Unmarshal(payload, &messages); err != nil {
		return nil
	}
	return messages
}
