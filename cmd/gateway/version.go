package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const gatewayVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the gateway's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("devgateway " + gatewayVersion)
		return nil
	},
}
