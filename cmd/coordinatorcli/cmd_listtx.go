package main

import (
	"github.com/urfave/cli"
)

var listTxCommand = cli.Command{
	Name:      "listtx",
	Category:  "Multisig",
	Usage:     "List a multisig account's transactions.",
	ArgsUsage: "multisig-account-address",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "status",
			Usage: "filter by tx status: pending, success or failure",
		},
	},
	Action: actionDecorator(listTx),
}

type listTxRequest struct {
	MultisigAccountAddress string  `json:"multisig_account_address"`
	TxStatusFilter         *string `json:"tx_status_filter"`
}

func listTx(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return cli.ShowCommandHelp(ctx, "listtx")
	}

	req := &listTxRequest{MultisigAccountAddress: args.Get(0)}
	if status := ctx.String("status"); status != "" {
		req.TxStatusFilter = &status
	}

	var resp interface{}
	client := newHTTPClient(ctx)
	if err := client.post("/api/v1/multisig-tx/list", req, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
