// Package kvstore ports registry-key reads for device- and install-path
// metadata to a generic key-value store, so config directives that need
// that information (and the reload coordinator's "did any watched key
// change" check) don't depend on a particular OS's configuration
// mechanism.
package kvstore

// Store reads string-valued metadata keys and reports whether a set of
// keys has changed since the caller last checked — the same two
// operations a registry-key open/notify pairing provided, abstracted
// away from any specific backing store.
type Store interface {
	// Read returns the value stored under key, or an error satisfying
	// errors.Is(err, ErrNotFound) if it doesn't exist.
	Read(key string) (string, error)

	// Exists reports whether key is present, without erroring if it isn't.
	Exists(key string) bool

	// Watch adds key to the set of keys this Store's Changed calls cover.
	// Calling Watch twice with the same key is a no-op.
	Watch(key string)

	// Changed reports whether any watched key's value has changed since
	// the last call to Changed (or since Watch was called, for a key
	// never checked before), and resets its baseline.
	Changed() bool
}
