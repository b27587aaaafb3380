package signature

import (
	"strings"
	"testing"
)

func TestVerifyAcceptsSignedHeader(t *testing.T) {
	header := Sign("msg-1", "2026-08-30T10:00:00Z", "topsecret")
	if !Verify(header, "msg-1", "2026-08-30T10:00:00Z", "topsecret") {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifyHeaderPrefixIsCaseInsensitive(t *testing.T) {
	header := Sign("msg-1", "d", "s")
	header = "SHA256=" + strings.TrimPrefix(header, "sha256=")
	if !Verify(header, "msg-1", "d", "s") {
		t.Fatal("expected uppercase scheme prefix to verify")
	}
}

func TestVerifySkippedWithoutSecret(t *testing.T) {
	if !Verify("", "msg-1", "2026-08-30T10:00:00Z", "") {
		t.Fatal("expected verification to be skipped when no secret is configured")
	}
}

func TestVerifyRejects(t *testing.T) {
	good := Sign("msg-1", "date-1", "topsecret")
	cases := []struct {
		name      string
		header    string
		messageID string
		date      string
	}{
		{"missing header", "", "msg-1", "date-1"},
		{"malformed header", "sha999=abcdef", "msg-1", "date-1"},
		{"non-hex digest", "sha256=zzzz", "msg-1", "date-1"},
		{"wrong message id", good, "msg-2", "date-1"},
		{"wrong date", good, "msg-1", "date-2"},
		{"missing message id", good, "", "date-1"},
		{"missing date", good, "msg-1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Verify(tc.header, tc.messageID, tc.date, "topsecret") {
				t.Fatal("expected verification to fail")
			}
		})
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	header := Sign("msg-1", "date-1", "secret-a")
	if Verify(header, "msg-1", "date-1", "secret-b") {
		t.Fatal("expected signature from a different secret to fail")
	}
}
