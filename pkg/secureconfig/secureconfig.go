// Package secureconfig implements SecretString and SecureConfig (C10):
// masked, zeroable containers for provider credentials. Grounded on
// blueberrycongee-llmux's internal/observability/redact.go, which classifies
// sensitive keys by substring match and masks values before they reach a
// log line; generalized here into a reusable value type rather than a
// log-pipeline filter, per spec.md §4.10.
package secureconfig

import (
	"encoding/json"
	"regexp"
)

// sensitiveKeyPattern matches config key names that must never be printed
// in full, per spec.md §4.10.
var sensitiveKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password|credential)`)

// IsSensitiveKey reports whether a config key name should be masked.
func IsSensitiveKey(key string) bool {
	return sensitiveKeyPattern.MatchString(key)
}

// SecretString holds a credential value that must never be emitted in
// full. String/GoString/MarshalJSON all return a "prefix***suffix" mask;
// only Reveal returns the real value, and Destroy zeroes the backing bytes.
type SecretString struct {
	value []byte
}

// NewSecretString wraps value in a SecretString.
func NewSecretString(value string) *SecretString {
	return &SecretString{value: []byte(value)}
}

// Reveal returns the real credential value. Callers must not log or print
// the result directly.
func (s *SecretString) Reveal() string {
	if s == nil {
		return ""
	}
	return string(s.value)
}

// mask builds the "prefix***suffix" representation. Values of length <= 4
// are fully masked since a partial reveal would leak most of the secret.
func (s *SecretString) mask() string {
	if s == nil || len(s.value) == 0 {
		return ""
	}
	if len(s.value) <= 4 {
		return "***"
	}
	prefix := s.value[:2]
	suffix := s.value[len(s.value)-2:]
	return string(prefix) + "***" + string(suffix)
}

// String implements fmt.Stringer with the masked form.
func (s *SecretString) String() string {
	return s.mask()
}

// GoString implements fmt.GoStringer so %#v also masks.
func (s *SecretString) GoString() string {
	return s.mask()
}

// MarshalJSON serializes the masked form, never the real value. This makes
// SecretString safe to embed in a struct that might be logged or dumped as
// JSON, but it also means a round trip through Marshal/Unmarshal does not
// preserve the original secret — config files carry the real credential as
// a plain JSON string, which UnmarshalJSON wraps on the way in.
func (s *SecretString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.mask())
}

// UnmarshalJSON wraps a plain JSON string value as the real credential.
// Config loaders read the raw secret this way; only display paths go
// through the masked MarshalJSON form.
func (s *SecretString) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.value = []byte(raw)
	return nil
}

// Destroy overwrites the backing bytes with zeros. The SecretString must
// not be used afterward.
func (s *SecretString) Destroy() {
	if s == nil {
		return
	}
	for i := range s.value {
		s.value[i] = 0
	}
	s.value = nil
}

// ProviderCredentials is the (provider_type, api_key, endpoint) triple
// spec.md §6 names for each of the LLM/embedding/store providers.
type ProviderCredentials struct {
	ProviderType string
	APIKey       *SecretString
	Endpoint     string
}

// SecureConfig wraps the full set of provider credentials the engine is
// constructed with, classifying and masking sensitive fields automatically.
type SecureConfig struct {
	LLM       ProviderCredentials
	Embedder  ProviderCredentials
	extra     map[string]*SecretString
}

// NewSecureConfig builds a SecureConfig from the given provider
// credentials, stored as passed (their APIKey fields are already
// SecretStrings).
func NewSecureConfig(llm, embedder ProviderCredentials) *SecureConfig {
	return &SecureConfig{LLM: llm, Embedder: embedder, extra: make(map[string]*SecretString)}
}

// SetExtra stores an additional named credential (e.g. a store backend's
// access token) as a SecretString. Every extra value is masked when
// printed, whether or not its key name looks sensitive; Reveal returns it.
func (c *SecureConfig) SetExtra(key, value string) {
	if IsSensitiveKey(key) {
		c.extra[key] = NewSecretString(value)
		return
	}
	c.extra[key] = &SecretString{value: []byte(value)}
}

// Extra returns the SecretString for key, or nil if unset.
func (c *SecureConfig) Extra(key string) *SecretString {
	return c.extra[key]
}

// Destroy zeroes every secret this config holds.
func (c *SecureConfig) Destroy() {
	c.LLM.APIKey.Destroy()
	c.Embedder.APIKey.Destroy()
	for _, s := range c.extra {
		s.Destroy()
	}
}
