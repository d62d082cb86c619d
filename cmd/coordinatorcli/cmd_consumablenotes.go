package main

import (
	"github.com/urfave/cli"
)

var consumableNotesCommand = cli.Command{
	Name:      "consumablenotes",
	Category:  "Multisig",
	Usage:     "List consumable notes, optionally scoped to one address.",
	ArgsUsage: "[address]",
	Action:    actionDecorator(consumableNotes),
}

type consumableNotesRequest struct {
	Address *string `json:"address"`
}

func consumableNotes(ctx *cli.Context) error {
	args := ctx.Args()

	req := &consumableNotesRequest{}
	if len(args) == 1 {
		addr := args.Get(0)
		req.Address = &addr
	}

	var resp interface{}
	client := newHTTPClient(ctx)
	if err := client.post("/api/v1/consumable-notes/list", req, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
