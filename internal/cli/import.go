package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helloworldx64/craftpacker/pkg/source/local"
)

// importCommand creates the import command, which turns a mods folder back
// into a name list.
func (c *CLI) importCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "List mod names from a folder of .jar files",
		Long: `Derive a mod name from every .jar file in a folder by dropping the version
and loader suffix, e.g. "sodium-fabric-mc1.20.1-0.5.3.jar" becomes "sodium".

The list is printed one name per line so it can be piped into search or
download, or written to a file with --output.

Examples:
  craftpacker import ~/.minecraft/mods
  craftpacker import ./old-pack -o mods.txt
  craftpacker import ./old-pack | craftpacker download -g 1.20.4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := local.ImportFolder(args[0])
			if err != nil {
				return err
			}
			c.Logger.Debug("imported folder", "dir", args[0], "names", len(names))

			list := strings.Join(names, "\n")
			if len(names) > 0 {
				list += "\n"
			}
			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), list)
				return nil
			}
			if err := os.WriteFile(output, []byte(list), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Imported %d mod names", len(names))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the list to a file instead of stdout")
	return cmd
}
