package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/spf13/cobra"
)

func newSetupCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Drop and recreate the agents and metrics tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), out, "This will destroy your database, are you sure?")
				if err != nil {
					return goerrors.Wrap(err, 0)
				}
				if !ok {
					fmt.Fprintln(out, "Nothing happened :)")
					return nil
				}
			}

			dbCfg := a.cfg.Database
			dbCfg.Setup = true
			db, err := a.openDB(cmd.Context(), dbCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintln(out, "Success!!")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables, columns and indexes without dropping data",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg := a.cfg.Database
			dbCfg.Setup = false
			dbCfg.AutoMigrate = true
			db, err := a.openDB(cmd.Context(), dbCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Migrated")
			return nil
		},
	}
}

// confirm 交互式确认，只有 y/yes 视为同意，默认拒绝
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "? %s (y/N) ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
