package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

func (c maincmd) sync(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() == 0 {
		return errors.New("must name at least one other config file")
	}

	s, err := c.store(ctx)
	if err != nil {
		return err
	}
	stores := []reportanchor.Store{s}
	for _, arg := range fs.Args() {
		s, err := storeFromConfig(ctx, arg)
		if err != nil {
			return errors.Wrapf(err, "reading %s", arg)
		}
		stores = append(stores, s)
	}

	return store.Sync(ctx, stores)
}
