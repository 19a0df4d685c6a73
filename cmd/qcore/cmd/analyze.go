package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	_ "github.com/quartzlabs/quartzcore/kernel/contract/mock"
	"github.com/quartzlabs/quartzcore/kernel/principal"
)

type AnalyzeCmd struct {
	BaseCmd
}

// GetAnalyzeCmd builds the code analysis command: it prints the derived
// interface of a registered code namespace as JSON.
func GetAnalyzeCmd() *AnalyzeCmd {
	analyzeCmdIns := new(AnalyzeCmd)

	var codeKey string
	var identifier string

	analyzeCmdIns.cmd = &cobra.Command{
		Use:           "analyze",
		Short:         "Print the interface analysis of a registered contract code.",
		Example:       "qcore analyze --code mock/tokens --contract ST000....tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyzeCode(codeKey, identifier)
		},
	}
	analyzeCmdIns.cmd.Flags().StringVarP(&codeKey, "code", "c", "", "registered code key")
	analyzeCmdIns.cmd.Flags().StringVarP(&identifier, "contract", "n", "", "qualified contract identifier")

	return analyzeCmdIns
}

func analyzeCode(codeKey, identifier string) error {
	p, err := principal.ParsePrincipal(identifier)
	if err != nil {
		return err
	}
	id, ok := p.(principal.ContractIdentifier)
	if !ok {
		return errors.Errorf("%q is not a contract identifier", identifier)
	}
	if err := contract.ValidContractName(id.Name); err != nil {
		return err
	}
	code, ok := contract.Code(codeKey)
	if !ok {
		return errors.Errorf("code %q not registered", codeKey)
	}

	buf, err := json.MarshalIndent(contract.AnalyzeContract(id, code), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}
