package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestNewTOTPEnrollment(t *testing.T) {
	enrollment, err := NewTOTPEnrollment("goodyfans", "admin@example.com")
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.Secret == "" {
		t.Fatal("expected a secret")
	}
	if !strings.Contains(enrollment.URL, "otpauth://totp/") {
		t.Fatalf("unexpected otpauth url: %q", enrollment.URL)
	}
	if !strings.HasPrefix(enrollment.QRDataURL, "data:image/png;base64,") {
		t.Fatalf("unexpected qr data url prefix: %q", enrollment.QRDataURL)
	}
}

func TestVerifyTOTP(t *testing.T) {
	enrollment, err := NewTOTPEnrollment("goodyfans", "admin@example.com")
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	now := time.Now()
	code, err := totp.GenerateCode(enrollment.Secret, now)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}

	if !VerifyTOTP(enrollment.Secret, code, now) {
		t.Fatal("expected valid code to verify")
	}
	if !VerifyTOTP(enrollment.Secret, " "+code+" ", now) {
		t.Fatal("expected trimmed code to verify")
	}
	wrong := "123456"
	if wrong == code {
		wrong = "654321"
	}
	if VerifyTOTP(enrollment.Secret, wrong, now) {
		t.Fatal("expected wrong code to fail")
	}
	if VerifyTOTP(enrollment.Secret, "12345", now) {
		t.Fatal("expected short code to fail")
	}
	if VerifyTOTP("", code, now) {
		t.Fatal("expected empty secret to fail")
	}
}
