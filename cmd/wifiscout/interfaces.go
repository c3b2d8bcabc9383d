package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kestrelsec/wifiscout/internal/wireless"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List wireless interfaces and their modes",
	Long:  `List every wireless interface the host reports, with its current operating mode.`,
	RunE:  runInterfaces,
}

func runInterfaces(cmd *cobra.Command, args []string) error {
	ifaces, err := wireless.NewController().List()
	if err != nil {
		if errors.Is(err, wireless.ErrNoInterface) {
			fmt.Println("No wireless interfaces found.")
			return nil
		}
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTERFACE\tMODE")
	fmt.Fprintln(w, "---------\t----")
	for _, ifc := range ifaces {
		fmt.Fprintf(w, "%s\t%s\n", ifc.Name, ifc.Mode)
	}
	return w.Flush()
}
