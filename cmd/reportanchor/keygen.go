package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
)

func (c maincmd) keygen(_ context.Context, fs *flag.FlagSet, args []string) error {
	out := fs.String("out", "reporter.key", "file to write the private key to")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return errors.Wrap(err, "generating key")
	}

	f, err := os.OpenFile(*out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return errors.Wrapf(err, "creating %s", *out)
	}
	defer f.Close()

	if _, err = fmt.Fprintln(f, hex.EncodeToString(priv.Seed())); err != nil {
		return errors.Wrapf(err, "writing %s", *out)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", *out)
	}

	var id reportanchor.Identity
	copy(id[:], pub)
	fmt.Println(id)
	return nil
}

// readKey reads a private key written by keygen.
func readKey(filename string) (ed25519.PrivateKey, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", filename)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key in %s has %d bytes, want %d", filename, len(seed), ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
