package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store/mem"
)

func (c maincmd) derive(_ context.Context, fs *flag.FlagSet, args []string) error {
	var (
		reporterStr = fs.String("reporter", "", "reporter identity (base58)")
		hashStr     = fs.String("hash", "", "report digest (hex)")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	reporter, hash, err := parsePair(*reporterStr, *hashStr)
	if err != nil {
		return err
	}

	// Derivation needs no store.
	reg := reportanchor.NewRegistry(mem.New(), c.owner)
	addr, bump, err := reg.Address(reporter, hash)
	if err != nil {
		return errors.Wrap(err, "deriving address")
	}
	fmt.Printf("%s %s bump=%d\n", addr, addr.Hex(), bump)
	return nil
}

func parsePair(reporterStr, hashStr string) (reportanchor.Identity, reportanchor.Digest, error) {
	if reporterStr == "" || hashStr == "" {
		return reportanchor.Identity{}, reportanchor.Digest{}, errors.New("must supply -reporter and -hash")
	}
	reporter, err := reportanchor.IdentityFromString(reporterStr)
	if err != nil {
		return reportanchor.Identity{}, reportanchor.Digest{}, errors.Wrap(err, "parsing -reporter")
	}
	hash, err := reportanchor.DigestFromHex(hashStr)
	if err != nil {
		return reportanchor.Identity{}, reportanchor.Digest{}, errors.Wrap(err, "parsing -hash")
	}
	return reporter, hash, nil
}
