package encoding

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func testCall() Call {
	return Call{
		Component: "card",
		Attrs: []Pair{
			{Key: "title", Value: "Hello"},
			{Key: "size", Value: 3},
			{Key: "big", Value: 70000},
			{Key: "ratio", Value: 0.5},
			{Key: "disabled", Value: true},
			{Key: "note", Value: nil},
			{Key: "tags", Value: []any{"a", 1}},
			{Key: "price", Value: decimal.RequireFromString("9.99")},
		},
	}
}

func wantCall() Call {
	c := testCall()
	c.Attrs[7].Value = "9.99"
	return c
}

func TestNewEncoder(t *testing.T) {
	if _, err := NewEncoder([]byte("short")); err != nil {
		t.Fatalf("NewEncoder with short key failed: %v", err)
	}
	if _, err := NewEncoder([]byte("this-is-a-32-byte-key-for-aes!!!")); err != nil {
		t.Fatalf("NewEncoder with 32-byte key failed: %v", err)
	}
	if _, err := NewEncoder(nil); err == nil {
		t.Error("NewEncoder with empty key succeeded")
	}
}

func TestRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	for _, encrypt := range []bool{false, true} {
		token, err := enc.Seal(testCall(), encrypt)
		if err != nil {
			t.Fatalf("Seal(encrypt=%v) failed: %v", encrypt, err)
		}
		wantPrefix := signedPrefix
		if encrypt {
			wantPrefix = encryptedPrefix
		}
		if !strings.HasPrefix(token, wantPrefix) {
			t.Errorf("token = %q, want prefix %q", token, wantPrefix)
		}

		got, err := enc.Open(token)
		if err != nil {
			t.Fatalf("Open(encrypt=%v) failed: %v", encrypt, err)
		}
		if !reflect.DeepEqual(got, wantCall()) {
			t.Errorf("Open() = %#v, want %#v", got, wantCall())
		}
	}
}

func TestOpenRejects(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	other, _ := NewEncoder([]byte("other-key"))

	signed, _ := enc.Seal(testCall(), false)
	encrypted, _ := enc.Seal(testCall(), true)

	tests := []struct {
		name  string
		enc   *Encoder
		token string
	}{
		{"tampered signature", enc, signed[:len(signed)-2] + "XX"},
		{"tampered ciphertext", enc, encrypted[:len(encrypted)-2] + "XX"},
		{"missing separator", enc, "s.invalidbase64withoutseparator"},
		{"unknown prefix", enc, "x.abc"},
		{"empty", enc, ""},
		{"different key signed", other, signed},
		{"different key encrypted", other, encrypted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.enc.Open(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Open() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestEmptyCall(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	token, err := enc.Seal(Call{Component: "x"}, false)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	got, err := enc.Open(token)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got.Component != "x" || len(got.Attrs) != 0 {
		t.Errorf("Open() = %+v", got)
	}
}
