package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
)

func (c maincmd) list(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		start  = fs.String("start", "", "start after this address (base58)")
		decode = fs.Bool("decode", false, "print each record too")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	var startAddr reportanchor.Address
	if *start != "" {
		startAddr, err = reportanchor.AddressFromString(*start)
		if err != nil {
			return errors.Wrap(err, "parsing start address")
		}
	}

	s, err := c.store(ctx)
	if err != nil {
		return err
	}

	return s.ListAddrs(ctx, startAddr, func(addr reportanchor.Address) error {
		if !*decode {
			fmt.Println(addr)
			return nil
		}
		data, err := s.Get(ctx, addr)
		if err != nil {
			return errors.Wrapf(err, "getting %s", addr)
		}
		var rep reportanchor.Report
		if err = rep.UnmarshalBinary(data); err != nil {
			fmt.Printf("%s: %s\n", addr, err)
			return nil
		}
		fmt.Printf("%s: %s\n", addr, rep)
		return nil
	})
}
