package hash

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the length returned by Sum.
const DigestLengthBytes = 64

// Hash is the domain-separated hash used for shared-secret derivation,
// view tags and generator construction.
//
// Internally this wraps blake3, but any hash with an extendable output
// would work as well.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash keyed with the engine-wide prefix, then absorbs any
// initial data.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	_, _ = hash.h.WriteString("ZERA-BLAKE3")
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the current output of the function, essentially
// a stream of random bytes derived from everything absorbed so far.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes from the current state.
// If a different length is required, use io.ReadFull(hash.Digest(), out).
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny absorbs data into the hash state with per-item domain framing.
//
// Supported types:
//
//   - []byte
//   - uint64
//   - hash.WriterToWithDomain
//   - encoding.BinaryMarshaler (curve points and scalars among others)
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var toBeWritten BytesWithDomain
		switch t := d.(type) {
		case []byte:
			if t == nil {
				return errors.New("hash.WriteAny: nil []byte")
			}
			toBeWritten = BytesWithDomain{"[]byte", t}
		case uint64:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], t)
			toBeWritten = BytesWithDomain{"uint64", buf[:]}
		case WriterToWithDomain:
			buf := new(bytes.Buffer)
			if _, err := t.WriteTo(buf); err != nil {
				return errors.WithMessagef(err, "hash.WriteAny: %s", reflect.TypeOf(t).String())
			}
			toBeWritten = BytesWithDomain{t.Domain(), buf.Bytes()}
		case encoding.BinaryMarshaler:
			name := reflect.TypeOf(t).String()
			raw, err := t.MarshalBinary()
			if err != nil {
				return errors.WithMessagef(err, "hash.WriteAny: %s", name)
			}
			toBeWritten = BytesWithDomain{name, raw}
		default:
			return errors.Errorf("hash.WriteAny: invalid type %T", d)
		}
		hash.writeBytesWithDomain(toBeWritten)
	}
	return nil
}

func (hash *Hash) writeBytesWithDomain(toBeWritten BytesWithDomain) {
	var sizeBuf [8]byte

	// Write out `(<domain_size><domain><data_size><data>)` so that each
	// domain-separated piece of data is distinguished from others.

	_, _ = hash.h.WriteString("(")
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(len(toBeWritten.TheDomain)))
	_, _ = hash.h.Write(sizeBuf[:])
	_, _ = hash.h.WriteString(toBeWritten.TheDomain)
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(len(toBeWritten.Bytes)))
	_, _ = hash.h.Write(sizeBuf[:])
	_, _ = hash.h.Write(toBeWritten.Bytes)
	_, _ = hash.h.WriteString(")")
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// Fork clones this hash, then writes some data to the clone.
func (hash *Hash) Fork(data ...interface{}) *Hash {
	newHash := hash.Clone()
	_ = newHash.WriteAny(data...)
	return newHash
}
