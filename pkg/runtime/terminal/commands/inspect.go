package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/de-tools/vsstate/pkg/runtime/terminal/export"
	"github.com/de-tools/vsstate/pkg/viewsheet/info"
	"github.com/de-tools/vsstate/pkg/viewsheet/registry"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

type InspectCmd struct {
	emitXML  bool
	reporter *export.Reporter
}

func NewInspectCmd(reporter *export.Reporter) *cobra.Command {
	ic := &InspectCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "inspect <file.xml>",
		Short: "List the assemblies of a viewsheet or assembly XML file",
		Args:  cobra.ExactArgs(1),
		RunE:  ic.run,
	}
	cmd.Flags().BoolVar(&ic.emitXML, "xml", false, "Print the normalized XML instead of a table")
	return cmd
}

// LoadViewsheet reads a <viewsheet> document or a single <assemblyInfo>.
// A bare assembly is wrapped in a viewsheet named after the file.
func LoadViewsheet(path string) (*registry.Viewsheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := xmlutil.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if root.Name == "viewsheet" {
		return registry.Parse(root)
	}

	ai, err := info.ParseXML(root)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	vs := registry.New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err := vs.Add(ai); err != nil {
		return nil, err
	}
	return vs, nil
}

func (ic *InspectCmd) run(cmd *cobra.Command, args []string) error {
	vs, err := LoadViewsheet(args[0])
	if err != nil {
		return err
	}
	if ic.emitXML {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), xmlutil.String(vs.WriteXML()))
		return err
	}
	return ic.reporter.Assemblies(export.NewAssemblyReport(vs.Name(), vs.Assemblies()))
}
