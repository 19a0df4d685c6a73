package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// filled in by -ldflags at build time
var (
	buildVersion = ""
	commitHash   = ""
	buildDate    = ""
)

type VersionCmd struct {
	BaseCmd
}

func GetVersionCmd() *VersionCmd {
	versionCmdIns := new(VersionCmd)

	versionCmdIns.cmd = &cobra.Command{
		Use:     "version",
		Short:   "View process version information.",
		Example: "qcore version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s-%s %s\n", buildVersion, commitHash, buildDate)
		},
	}

	return versionCmdIns
}
