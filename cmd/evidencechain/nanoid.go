package main

import (
	"fmt"

	"evidencechain/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Generate identifiers for pre-registering evidence",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
		&cli.IntFlag{
			Name:  "size",
			Usage: "Length of each ID",
			Value: utils.NanoidSize,
		},
	},
	Action: func(c *cli.Context) error {
		size := c.Int("size")
		if size < 1 || size > utils.MaxIDLength {
			return fmt.Errorf("size must be between 1 and %d", utils.MaxIDLength)
		}

		for range c.Int("count") {
			fmt.Println(utils.NanoIDSize(size))
		}
		return nil
	},
}
