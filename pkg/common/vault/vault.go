package vault

// Vault stores opaque key material addressed by its serialized key
// identifier. Implementations decide where the bytes live; callers must
// treat stored material as secret.
type Vault interface {
	Import(ski string, key []byte) error
	Get(ski string) ([]byte, error)
	Delete(ski string) error
}
