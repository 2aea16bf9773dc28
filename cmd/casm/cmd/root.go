/*
Copyright © 2024 casm contributors

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"casm/internal/driver"
)

var dflag bool

var rootCmd = &cobra.Command{
	Use:   "casm sourceFile...",
	Short: "A two-pass assembler for the course instruction set",
	Long: `casm reads one or more ".as" source files, expands their macros,
assembles each in two passes, and writes the resulting ".ob" object file
and, when needed, ".ext" and ".ent" symbol files alongside the source.

Each argument names a source file either with or without its ".as"
suffix; the suffix is stripped automatically if present.
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bases := make([]string, len(args))
		for i, a := range args {
			bases[i] = strings.TrimSuffix(a, ".as")
		}
		driver.Run(bases, dflag)
	},
}

// Execute runs the root command, exiting the process on a cobra-level
// usage error (unparseable flags, unknown subcommand). Assembly
// failures themselves never set a nonzero exit status — they are
// reported as diagnostics per file.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&dflag, "debug", "d", false, "enable debug tracing")
}
