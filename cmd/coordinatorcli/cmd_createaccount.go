package main

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli"
)

var createAccountCommand = cli.Command{
	Name:      "createaccount",
	Category:  "Multisig",
	Usage:     "Create a new multisig account.",
	ArgsUsage: "threshold approver[,approver...] pub-key-commit[,pub-key-commit...]",
	Action:    actionDecorator(createAccount),
}

type createAccountRequest struct {
	Threshold     uint32   `json:"threshold"`
	Approvers     []string `json:"approvers"`
	PubKeyCommits []string `json:"pub_key_commits"`
}

type createAccountResponse struct {
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func createAccount(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 3 {
		return cli.ShowCommandHelp(ctx, "createaccount")
	}

	threshold, err := strconv.ParseUint(args.Get(0), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid threshold: %w", err)
	}

	approvers := strings.Split(args.Get(1), ",")
	pubKeyCommitsB64 := strings.Split(args.Get(2), ",")
	for _, b64 := range pubKeyCommitsB64 {
		if _, err := base64.StdEncoding.DecodeString(b64); err != nil {
			return fmt.Errorf("invalid pub key commit %q: %w", b64, err)
		}
	}

	req := &createAccountRequest{
		Threshold:     uint32(threshold),
		Approvers:     approvers,
		PubKeyCommits: pubKeyCommitsB64,
	}

	var resp createAccountResponse
	client := newHTTPClient(ctx)
	if err := client.post("/api/v1/multisig-account/create", req, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
