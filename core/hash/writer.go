package hash

import "io"

// WriterToWithDomain is implemented by types that know how to write a
// canonical representation of themselves along with a domain tag that makes
// that representation unambiguous inside a transcript.
type WriterToWithDomain interface {
	io.WriterTo
	// Domain returns a tag identifying the type being written.
	Domain() string
}

// BytesWithDomain tags a raw byte string with an explicit domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}
