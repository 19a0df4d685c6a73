package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/quartzlabs/quartzcore/cmd/qcore/cmd"
)

func main() {
	rootCmd, err := NewQcoreCommand()
	if err != nil {
		log.Fatalf("init command failed.err:%v", err)
	}

	if err = rootCmd.Execute(); err != nil {
		log.Fatalf("run command failed.err:%v", err)
	}
}

func NewQcoreCommand() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:           "qcore <command> [arguments]",
		Short:         "Qcore is a tool for inspecting block state stores.",
		Long:          "Qcore is a tool for inspecting block state stores.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       "qcore block info --db ./data/state --block <hex id>",
	}

	cmd.RegisterRootFlags(rootCmd)
	rootCmd.AddCommand(cmd.GetVersionCmd().GetCmd())
	rootCmd.AddCommand(cmd.GetBlockCmd().GetCmd())
	rootCmd.AddCommand(cmd.GetAnalyzeCmd().GetCmd())
	return rootCmd, nil
}
