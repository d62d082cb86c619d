package main

import (
	"encoding/base64"
	"fmt"

	"github.com/urfave/cli"
)

var proposeTxCommand = cli.Command{
	Name:      "proposetx",
	Category:  "Multisig",
	Usage:     "Propose a new multisig transaction.",
	ArgsUsage: "multisig-account-address base64-tx-request",
	Action:    actionDecorator(proposeTx),
}

type proposeTxRequest struct {
	MultisigAccountAddress string `json:"multisig_account_address"`
	TxRequest              string `json:"tx_request"`
}

type proposeTxResponse struct {
	TxID      string `json:"tx_id"`
	TxSummary string `json:"tx_summary"`
}

func proposeTx(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 2 {
		return cli.ShowCommandHelp(ctx, "proposetx")
	}

	if _, err := base64.StdEncoding.DecodeString(args.Get(1)); err != nil {
		return fmt.Errorf("invalid tx request: %w", err)
	}

	req := &proposeTxRequest{
		MultisigAccountAddress: args.Get(0),
		TxRequest:              args.Get(1),
	}

	var resp proposeTxResponse
	client := newHTTPClient(ctx)
	if err := client.post("/api/v1/multisig-tx/propose", req, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
