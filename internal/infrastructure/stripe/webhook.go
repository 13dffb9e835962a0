package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventCheckoutSessionCompleted is the event type the reconciliation
// handler acts on. All other types are acknowledged and ignored.
const EventCheckoutSessionCompleted = "checkout.session.completed"

var (
	ErrInvalidSignatureHeader = errors.New("webhook signature header is malformed")
	ErrSignatureMismatch      = errors.New("webhook signature does not match payload")
	ErrTimestampOutOfRange    = errors.New("webhook timestamp outside tolerance")
)

// ConstructEvent verifies the signature header against the shared
// webhook secret and unmarshals the event. The header carries a unix
// timestamp and one or more HMAC-SHA256 signatures over
// "<timestamp>.<payload>"; verification fails closed. No event is
// returned unless a signature matches and the timestamp is within
// tolerance, which bounds replay of captured deliveries.
func ConstructEvent(payload []byte, sigHeader, secret string, tolerance time.Duration) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	age := time.Since(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return nil, ErrTimestampOutOfRange
	}

	expected := computeSignature(timestamp, payload, secret)
	var match bool
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			match = true
			break
		}
	}
	if !match {
		return nil, ErrSignatureMismatch
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("error unmarshalling event: %w", err)
	}
	return &event, nil
}

// SignPayload builds a valid signature header for a payload. Used by the
// test suites to forge verifiable deliveries.
func SignPayload(payload []byte, secret string, at time.Time) string {
	sig := computeSignature(at.Unix(), payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrInvalidSignatureHeader
	}

	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignatureHeader
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, v)
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignatureHeader
	}
	return timestamp, signatures, nil
}
