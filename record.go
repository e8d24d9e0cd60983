package reportanchor

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Report is an anchored report:
// the binding of a report digest to its publisher and its subject.
type Report struct {
	Reporter       Identity `json:"reporter"`
	AnalyzedWallet Identity `json:"analyzed_wallet"`
	ReportHash     Digest   `json:"report_hash"`
	CreatedAt      int64    `json:"created_at"` // Unix seconds
}

// Record layout.
//
// There is no version field.
// A future change to the layout needs a new KindTag.
const (
	KindTagSize = 8

	reporterOffset  = KindTagSize
	walletOffset    = reporterOffset + 32
	hashOffset      = walletOffset + 32
	createdAtOffset = hashOffset + 32

	// RecordSize is the exact length of an encoded Report.
	RecordSize = createdAtOffset + 8
)

// KindTag is the fixed prefix of every encoded Report.
var KindTag = kindTag("AnchoredReport")

func kindTag(name string) [KindTagSize]byte {
	var out [KindTagSize]byte
	h := sha256.Sum256([]byte("account:" + name))
	copy(out[:], h[:])
	return out
}

// MarshalBinary encodes r in the fixed record layout.
func (r Report) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)
	copy(buf, KindTag[:])
	copy(buf[reporterOffset:], r.Reporter[:])
	copy(buf[walletOffset:], r.AnalyzedWallet[:])
	copy(buf[hashOffset:], r.ReportHash[:])
	binary.LittleEndian.PutUint64(buf[createdAtOffset:], uint64(r.CreatedAt))
	return buf, nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary.
// It fails with ErrCorruptRecord on a wrong length or kind tag.
func (r *Report) UnmarshalBinary(data []byte) error {
	if len(data) != RecordSize {
		return errors.Wrapf(ErrCorruptRecord, "record has %d bytes, want %d", len(data), RecordSize)
	}
	var tag [KindTagSize]byte
	copy(tag[:], data)
	if tag != KindTag {
		return errors.Wrapf(ErrCorruptRecord, "kind tag %x, want %x", tag, KindTag)
	}
	copy(r.Reporter[:], data[reporterOffset:walletOffset])
	copy(r.AnalyzedWallet[:], data[walletOffset:hashOffset])
	copy(r.ReportHash[:], data[hashOffset:createdAtOffset])
	r.CreatedAt = int64(binary.LittleEndian.Uint64(data[createdAtOffset:]))
	return nil
}

func (r Report) String() string {
	return fmt.Sprintf("reporter %s, analyzed wallet %s, hash %s, created at %d", r.Reporter, r.AnalyzedWallet, r.ReportHash, r.CreatedAt)
}
