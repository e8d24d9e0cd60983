package reportanchor

import (
	"crypto/sha256"
	"strconv"
	"unicode/utf8"
)

// ScoringVersion identifies the analysis that produced a report's metrics.
const ScoringVersion = "1.0.0"

// Payload is the off-system report whose digest gets anchored.
// Its JSON encoding,
// with fields in this order,
// is what HashPayload hashes.
// The struct tags give the same field names for callers decoding a payload file.
type Payload struct {
	WalletAddress     string `json:"wallet_address"`
	MetricsJSON       string `json:"metrics_json"`
	ScoringVersion    string `json:"scoring_version"`
	AnalysisTimestamp int64  `json:"analysis_timestamp"` // Unix milliseconds
}

// Canonical produces the exact bytes that get hashed:
// the JSON object JavaScript's JSON.stringify produces for the same payload.
// Strings are escaped the way JSON.stringify escapes them,
// which differs from encoding/json
// (no HTML escaping, raw U+2028 and U+2029, \b and \f short forms).
// Invalid UTF-8 is replaced with U+FFFD.
func (p Payload) Canonical() ([]byte, error) {
	buf := make([]byte, 0, 96+len(p.WalletAddress)+len(p.MetricsJSON)+len(p.ScoringVersion))
	buf = append(buf, `{"wallet_address":`...)
	buf = appendJSString(buf, p.WalletAddress)
	buf = append(buf, `,"metrics_json":`...)
	buf = appendJSString(buf, p.MetricsJSON)
	buf = append(buf, `,"scoring_version":`...)
	buf = appendJSString(buf, p.ScoringVersion)
	buf = append(buf, `,"analysis_timestamp":`...)
	buf = strconv.AppendInt(buf, p.AnalysisTimestamp, 10)
	buf = append(buf, '}')
	return buf, nil
}

const hexDigits = "0123456789abcdef"

func appendJSString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, `\"`...)
		case '\\':
			buf = append(buf, `\\`...)
		case '\b':
			buf = append(buf, `\b`...)
		case '\f':
			buf = append(buf, `\f`...)
		case '\n':
			buf = append(buf, `\n`...)
		case '\r':
			buf = append(buf, `\r`...)
		case '\t':
			buf = append(buf, `\t`...)
		default:
			if r < 0x20 {
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[r>>4], hexDigits[r&0xf])
				continue
			}
			buf = utf8.AppendRune(buf, r)
		}
	}
	return append(buf, '"')
}

// HashPayload computes the report digest of p.
func HashPayload(p Payload) (Digest, error) {
	b, err := p.Canonical()
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(b), nil
}

// VerifyPayload tells whether p hashes to want.
func VerifyPayload(p Payload, want Digest) (bool, error) {
	got, err := HashPayload(p)
	if err != nil {
		return false, err
	}
	return got == want, nil
}
