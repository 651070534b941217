package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook signatures follow the "t=<unix>,v1=<hex>" scheme: the
// signed payload is "<t>.<body>" keyed with the endpoint secret.
const signatureTolerance = 5 * time.Minute

var (
	ErrMalformedSignature = errors.New("malformed signature header")
	ErrSignatureMismatch  = errors.New("signature mismatch")
	ErrStaleTimestamp     = errors.New("signature timestamp outside tolerance")
)

// SignPayload produces a signature header for the payload. Used by
// tests and by the local provider stub.
func SignPayload(secret string, payload []byte, at time.Time) string {
	ts := at.Unix()
	mac := computeSignature(secret, payload, ts)
	return fmt.Sprintf("t=%d,v1=%s", ts, mac)
}

// VerifySignature checks the header against the raw body. The
// timestamp guards against replay of captured deliveries.
func VerifySignature(secret string, payload []byte, header string, now time.Time) error {
	var ts int64
	var sigs []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			return ErrMalformedSignature
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrMalformedSignature
			}
			ts = parsed
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}

	if ts == 0 || len(sigs) == 0 {
		return ErrMalformedSignature
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrStaleTimestamp
	}

	expected := computeSignature(secret, payload, ts)
	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrSignatureMismatch
}

func computeSignature(secret string, payload []byte, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
