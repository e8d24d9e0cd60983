package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
)

func (c maincmd) hash(_ context.Context, fs *flag.FlagSet, args []string) error {
	var (
		payloadFile = fs.String("payload", "", "JSON payload file (overrides the other flags)")
		wallet      = fs.String("wallet", "", "analyzed wallet address")
		metrics     = fs.String("metrics", "{}", "metrics JSON")
		version     = fs.String("version", reportanchor.ScoringVersion, "scoring version")
		ts          = fs.Int64("ts", 0, "analysis timestamp in Unix milliseconds (default: now)")
		check       = fs.String("check", "", "hex digest to compare against")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	var p reportanchor.Payload
	if *payloadFile != "" {
		b, err := os.ReadFile(*payloadFile)
		if err != nil {
			return errors.Wrapf(err, "reading %s", *payloadFile)
		}
		if err = json.Unmarshal(b, &p); err != nil {
			return errors.Wrapf(err, "decoding %s", *payloadFile)
		}
	} else {
		if *wallet == "" {
			return errors.New("must supply -wallet or -payload")
		}
		p = reportanchor.Payload{
			WalletAddress:     *wallet,
			MetricsJSON:       *metrics,
			ScoringVersion:    *version,
			AnalysisTimestamp: *ts,
		}
		if p.AnalysisTimestamp == 0 {
			p.AnalysisTimestamp = time.Now().UnixMilli()
		}
	}

	if *check != "" {
		want, err := reportanchor.DigestFromHex(*check)
		if err != nil {
			return errors.Wrap(err, "parsing -check")
		}
		ok, err := reportanchor.VerifyPayload(p, want)
		if err != nil {
			return errors.Wrap(err, "hashing payload")
		}
		if !ok {
			return fmt.Errorf("payload does not hash to %s", want)
		}
		fmt.Println("ok")
		return nil
	}

	canon, err := p.Canonical()
	if err != nil {
		return errors.Wrap(err, "encoding payload")
	}
	h, err := reportanchor.HashPayload(p)
	if err != nil {
		return errors.Wrap(err, "hashing payload")
	}
	fmt.Printf("%s\n%s\n", canon, h)
	return nil
}
