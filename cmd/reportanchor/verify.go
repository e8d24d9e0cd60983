package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"
)

func (c maincmd) verify(ctx context.Context, fs *flag.FlagSet, args []string) error {
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

	reg, err := c.registry(ctx)
	if err != nil {
		return err
	}
	rep, err := reg.Verify(ctx, reporter, hash)
	if err != nil {
		return errors.Wrapf(err, "verifying reporter %s, hash %s", reporter, hash)
	}
	return printJSON(rep)
}
