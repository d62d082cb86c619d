package main

import (
	"github.com/urfave/cli"
)

var txStatsCommand = cli.Command{
	Name:      "txstats",
	Category:  "Multisig",
	Usage:     "Show aggregate transaction stats for a multisig account.",
	ArgsUsage: "multisig-account-address",
	Action:    actionDecorator(txStats),
}

type txStatsRequest struct {
	MultisigAccountAddress string `json:"multisig_account_address"`
}

func txStats(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return cli.ShowCommandHelp(ctx, "txstats")
	}

	req := &txStatsRequest{MultisigAccountAddress: args.Get(0)}

	var resp interface{}
	client := newHTTPClient(ctx)
	if err := client.post("/api/v1/multisig-tx/stats", req, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
