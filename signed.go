package reportanchor

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

const signingDomain = "reportanchor/anchor"

// SignedRequest is a request to anchor a report,
// authenticated by the reporter's ed25519 signature.
type SignedRequest struct {
	Reporter       Identity `json:"reporter"`
	AnalyzedWallet Identity `json:"analyzed_wallet"`
	ReportHash     Digest   `json:"report_hash"`
	Signature      []byte   `json:"signature"`
}

// SigningMessage is the byte string a reporter signs to anchor reportHash for analyzedWallet.
func SigningMessage(analyzedWallet Identity, reportHash Digest) []byte {
	msg := make([]byte, 0, len(signingDomain)+len(analyzedWallet)+len(reportHash))
	msg = append(msg, signingDomain...)
	msg = append(msg, analyzedWallet[:]...)
	msg = append(msg, reportHash[:]...)
	return msg
}

// Sign produces a SignedRequest from the reporter's private key.
func Sign(key ed25519.PrivateKey, analyzedWallet Identity, reportHash Digest) SignedRequest {
	var reporter Identity
	copy(reporter[:], key.Public().(ed25519.PublicKey))
	return SignedRequest{
		Reporter:       reporter,
		AnalyzedWallet: analyzedWallet,
		ReportHash:     reportHash,
		Signature:      ed25519.Sign(key, SigningMessage(analyzedWallet, reportHash)),
	}
}

// Verify checks the request signature against the reporter identity.
func (req SignedRequest) Verify() error {
	if len(req.Signature) != ed25519.SignatureSize {
		return errors.Wrapf(ErrUnauthenticated, "signature has %d bytes", len(req.Signature))
	}
	if !ed25519.Verify(ed25519.PublicKey(req.Reporter[:]), SigningMessage(req.AnalyzedWallet, req.ReportHash), req.Signature) {
		return errors.Wrapf(ErrUnauthenticated, "reporter %s", req.Reporter)
	}
	return nil
}

// AnchorSigned is Anchor for a request whose reporter is proven by signature.
// The stored reporter is always the key that signed.
func (r *Registry) AnchorSigned(ctx context.Context, req SignedRequest) (Report, error) {
	if err := req.Verify(); err != nil {
		return Report{}, err
	}
	return r.Anchor(ctx, req.Reporter, req.AnalyzedWallet, req.ReportHash)
}
