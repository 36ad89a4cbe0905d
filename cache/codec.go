package cache

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/lepinkainen/videodup/vhash"
)

// Entry layout: magic, big-endian version, the 48-byte cache key, then the
// CBOR-encoded VideoHash. Entries are written whole and replaced by rename,
// never mutated in place.
const (
	entryMagic   = "VHSH"
	entryVersion = uint16(1)
)

var (
	entryEncMode cbor.EncMode
	entryDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	entryEncMode = em

	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	entryDecMode = dm
}

// encodeEntry serializes a VideoHash into the versioned on-disk format.
func encodeEntry(key Key, vh *vhash.VideoHash) ([]byte, error) {
	body, err := entryEncMode.Marshal(vh)
	if err != nil {
		return nil, fmt.Errorf("encoding hash body: %w", err)
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(entryMagic)+2+len(key)+len(body)))
	buf.WriteString(entryMagic)
	var ver [2]byte
	binary.BigEndian.PutUint16(ver[:], entryVersion)
	buf.Write(ver[:])
	buf.Write(key[:])
	buf.Write(body)
	return buf.Bytes(), nil
}

// decodeEntry parses and validates an on-disk entry. Any mismatch (magic,
// version, embedded key, body) is a corruption error; callers treat it as a
// cache miss and remove the file.
func decodeEntry(data []byte, key Key) (*vhash.VideoHash, error) {
	header := len(entryMagic) + 2 + len(key)
	if len(data) < header {
		return nil, fmt.Errorf("entry truncated at %d bytes", len(data))
	}
	if string(data[:len(entryMagic)]) != entryMagic {
		return nil, fmt.Errorf("bad entry magic %q", data[:len(entryMagic)])
	}
	if v := binary.BigEndian.Uint16(data[len(entryMagic):]); v != entryVersion {
		return nil, fmt.Errorf("unsupported entry version %d", v)
	}
	var embedded Key
	copy(embedded[:], data[len(entryMagic)+2:])
	if embedded != key {
		return nil, fmt.Errorf("entry key mismatch")
	}

	var vh vhash.VideoHash
	if err := entryDecMode.Unmarshal(data[header:], &vh); err != nil {
		return nil, fmt.Errorf("decoding hash body: %w", err)
	}
	if len(vh.Spatial) == 0 || vh.DurationMS <= 0 || vh.Path == "" {
		return nil, fmt.Errorf("decoded hash fails validation")
	}
	return &vh, nil
}
