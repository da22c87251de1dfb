package payment

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifier_Verify(t *testing.T) {
	now := time.Unix(1767225600, 0)
	v := NewVerifier("whsec_test", 5*time.Minute).WithClock(func() time.Time { return now })
	body := []byte(`{"type":"succeeded","reference":"chrg_1"}`)

	t.Run("valid signature", func(t *testing.T) {
		assert.NoError(t, v.Verify(v.Sign(body, now), body))
	})

	t.Run("within tolerance", func(t *testing.T) {
		assert.NoError(t, v.Verify(v.Sign(body, now.Add(-4*time.Minute)), body))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(v.Sign(body, now.Add(-6*time.Minute)), body), ErrTimestampSkew)
	})

	t.Run("future timestamp", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(v.Sign(body, now.Add(6*time.Minute)), body), ErrTimestampSkew)
	})

	t.Run("tampered body", func(t *testing.T) {
		header := v.Sign(body, now)
		assert.ErrorIs(t, v.Verify(header, []byte(`{"type":"succeeded","reference":"chrg_2"}`)), ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewVerifier("whsec_other", 5*time.Minute)
		assert.ErrorIs(t, v.Verify(other.Sign(body, now), body), ErrInvalidSignature)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify("", body), ErrMissingSignature)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify("garbage", body), ErrMalformedHeader)
		assert.ErrorIs(t, v.Verify("t=abc,v1=00", body), ErrMalformedHeader)
		assert.ErrorIs(t, v.Verify("t="+strconv.FormatInt(now.Unix(), 10), body), ErrMalformedHeader)
	})

	t.Run("one of several signatures matches", func(t *testing.T) {
		good := v.Sign(body, now)
		header := "t=" + strconv.FormatInt(now.Unix(), 10) + ",v1=deadbeef," + good[len("t=1767225600,"):]
		assert.NoError(t, v.Verify(header, body))
	})
}
