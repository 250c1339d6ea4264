// Package userauth loads the L2 CLOB API credentials used only by the
// out-of-scope user-channel subscriber. The core never reads these: the
// market channel is public and requires no authentication.
package userauth

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
)

// Credentials are the L2 API credentials for CLOB operations, derived
// out-of-band from L1 (private-key) authentication.
type Credentials struct {
	APIKey     string
	Secret     string
	Passphrase string
}

// FromEnv loads credentials from POLY_API_KEY, POLY_API_SECRET, and
// POLY_API_PASSPHRASE. ok is false if any of the three is unset.
func FromEnv() (creds Credentials, ok bool) {
	apiKey := os.Getenv("POLY_API_KEY")
	secret := os.Getenv("POLY_API_SECRET")
	passphrase := os.Getenv("POLY_API_PASSPHRASE")

	creds = Credentials{APIKey: apiKey, Secret: secret, Passphrase: passphrase}
	return creds, creds.IsValid()
}

// IsValid reports whether all three fields are non-empty.
func (c Credentials) IsValid() bool {
	return c.APIKey != "" && c.Secret != "" && c.Passphrase != ""
}

// String redacts the secret and passphrase, truncating the API key.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{api_key: %s, secret: [REDACTED], passphrase: [REDACTED]}", truncate(c.APIKey))
}

// MarshalLogObject implements zapcore.ObjectMarshaler so Credentials can
// be logged directly (zap.Object("credentials", creds)) without ever
// writing the secret or passphrase to a log sink.
func (c Credentials) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("api_key", truncate(c.APIKey))
	enc.AddString("secret", "[REDACTED]")
	enc.AddString("passphrase", "[REDACTED]")
	return nil
}

func truncate(s string) string {
	const n = 8
	if len(s) <= n {
		return s + "..."
	}
	return s[:n] + "..."
}
