package credentials

import "os"

// KeyComposio is the logical name of the Composio API key credential.
const KeyComposio = "composio"

// envVars maps logical credential names to their environment variable fallbacks.
var envVars = map[string]string{
	KeyComposio: "COMPOSIO_API_KEY",
}

// EnvVarFor returns the environment variable name backing a logical credential
// name, or "" if the name is unknown.
func EnvVarFor(name string) string {
	return envVars[name]
}

// Source supplies secrets by logical name. Implementations must be safe for
// concurrent use; tool handlers may call Get from multiple goroutines.
type Source interface {
	// Get returns the secret for the given logical name.
	// The second return value reports whether the credential is present.
	Get(name string) (string, bool)
}

// EnvSource resolves credentials from environment variables using the
// well-known name mapping. Unknown names resolve to absent.
type EnvSource struct{}

// Get implements Source.
func (EnvSource) Get(name string) (string, bool) {
	envVar := envVars[name]
	if envVar == "" {
		return "", false
	}
	value := os.Getenv(envVar)
	return value, value != ""
}

// StaticSource is an in-memory Source, mainly for tests and for passing
// flag-provided secrets down to the tool handlers.
type StaticSource map[string]string

// Get implements Source.
func (s StaticSource) Get(name string) (string, bool) {
	value, ok := s[name]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Resolve looks up a credential in the given source, falling back to the
// environment when src is nil. Absence is a valid, handleable state: callers
// are expected to turn a missing credential into a user-visible error rather
// than failing hard.
func Resolve(src Source, name string) (string, bool) {
	if src != nil {
		return src.Get(name)
	}
	return EnvSource{}.Get(name)
}
