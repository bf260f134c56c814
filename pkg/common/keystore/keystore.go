package keystore

// Keystore persists serialized keys and resolves them by the account and
// role they serve.
type Keystore interface {
	// Import stores the key bytes under ski and binds them to account/role.
	Import(ski string, key []byte, account, role string) error

	// Get returns the key bytes serving account/role.
	Get(account, role string) ([]byte, error)

	// Delete removes the key serving account/role.
	Delete(account, role string) error

	// DeleteAccount removes every key bound to the account.
	DeleteAccount(account string) error
}
