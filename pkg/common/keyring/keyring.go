package keyring

// Entry binds a stored key to the account and role it serves.
type Entry struct {
	Account string
	Role    string
	SKI     string
}

// Index resolves which stored key serves a given account and role, such as
// an account's balance-encryption key or stealth view key.
type Index interface {
	// Bind records that the key identified by ski serves account/role.
	Bind(ski, account, role string) error

	// Lookup returns the entry bound to account/role.
	Lookup(account, role string) (*Entry, error)

	// LookupAccount returns every entry bound to the account.
	LookupAccount(account string) ([]*Entry, error)

	// Unbind removes the binding for account/role.
	Unbind(account, role string) error

	// UnbindAccount removes every binding for the account.
	UnbindAccount(account string) error
}
