// coordinatorcli is a thin JSON-over-HTTP client of the coordinator's HTTP
// façade, grounded on dcrlncli's own cli.Command/actionDecorator idiom.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "coordinatorcli"
	app.Usage = "command line client for the multisig coordinator"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rpcserver",
			Value: "localhost:59059",
			Usage: "host:port of the coordinator's HTTP façade",
		},
	}
	app.Commands = []cli.Command{
		createAccountCommand,
		proposeTxCommand,
		addSignatureCommand,
		listTxCommand,
		txStatsCommand,
		consumableNotesCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "[coordinatorcli] %v\n", err)
		os.Exit(1)
	}
}
