package main

import (
	"encoding/base64"
	"fmt"

	"github.com/urfave/cli"
)

var addSignatureCommand = cli.Command{
	Name:      "addsignature",
	Category:  "Multisig",
	Usage:     "Submit an approver's signature for a proposed transaction.",
	ArgsUsage: "tx-id approver-address base64-signature",
	Action:    actionDecorator(addSignature),
}

type addSignatureRequest struct {
	TxID      string `json:"tx_id"`
	Approver  string `json:"approver"`
	Signature string `json:"signature"`
}

type addSignatureResponse struct {
	TxResult *string `json:"tx_result"`
}

func addSignature(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 3 {
		return cli.ShowCommandHelp(ctx, "addsignature")
	}

	if _, err := base64.StdEncoding.DecodeString(args.Get(2)); err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	req := &addSignatureRequest{
		TxID:      args.Get(0),
		Approver:  args.Get(1),
		Signature: args.Get(2),
	}

	var resp addSignatureResponse
	client := newHTTPClient(ctx)
	if err := client.post("/api/v1/signature/add", req, &resp); err != nil {
		return err
	}

	if resp.TxResult == nil {
		fmt.Println("signature accepted, threshold not yet met")
		return nil
	}

	printRespJSON(resp)
	return nil
}
