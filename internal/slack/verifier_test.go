package slack

import (
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"
)

func signedHeader(v *Verifier, ts time.Time, body []byte) http.Header {
	tsStr := strconv.FormatInt(ts.Unix(), 10)
	h := http.Header{}
	h.Set(TimestampHeader, tsStr)
	h.Set(SignatureHeader, v.Sign(tsStr, body))
	return h
}

func TestVerify(t *testing.T) {
	v := NewVerifier("8f742231b10e8888abcd99yyyzzz85a5")
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	body := []byte(`{"type":"event_callback"}`)

	t.Run("valid signature", func(t *testing.T) {
		if err := v.Verify(signedHeader(v, now, body), body); err != nil {
			t.Errorf("Verify() unexpected error: %v", err)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		h := signedHeader(v, now, body)
		err := v.Verify(h, []byte(`{"type":"tampered"}`))
		if !errors.Is(err, ErrBadSignature) {
			t.Errorf("Verify() error = %v, want ErrBadSignature", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewVerifier("different-secret")
		err := v.Verify(signedHeader(other, now, body), body)
		if !errors.Is(err, ErrBadSignature) {
			t.Errorf("Verify() error = %v, want ErrBadSignature", err)
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		err := v.Verify(signedHeader(v, now.Add(-10*time.Minute), body), body)
		if !errors.Is(err, ErrStaleTimestamp) {
			t.Errorf("Verify() error = %v, want ErrStaleTimestamp", err)
		}
	})

	t.Run("future timestamp", func(t *testing.T) {
		err := v.Verify(signedHeader(v, now.Add(10*time.Minute), body), body)
		if !errors.Is(err, ErrStaleTimestamp) {
			t.Errorf("Verify() error = %v, want ErrStaleTimestamp", err)
		}
	})

	t.Run("missing headers", func(t *testing.T) {
		err := v.Verify(http.Header{}, body)
		if !errors.Is(err, ErrMissingSignature) {
			t.Errorf("Verify() error = %v, want ErrMissingSignature", err)
		}
	})
}
