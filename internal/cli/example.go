package cli

import (
	"encoding/json"
	"fmt"
	"io"

	goerrors "github.com/go-errors/errors"
	"github.com/nodeiot/iotdb/internal/models"
	"github.com/spf13/cobra"
)

func newExampleCommand(a *app) *cobra.Command {
	var agentUUID string
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Recreate the schema and walk through every agent and metric operation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			dbCfg := a.cfg.Database
			dbCfg.Setup = true
			db, err := a.openDB(ctx, dbCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			agent, err := db.Agent.CreateOrUpdate(ctx, models.Agent{
				UUID:      agentUUID,
				Name:      "test",
				Username:  "test",
				Hostname:  "test",
				PID:       1,
				Connected: true,
			})
			if err != nil {
				return goerrors.Wrap(err, 0)
			}
			if err := dump(out, "agent", agent); err != nil {
				return err
			}

			agents, err := db.Agent.FindAll(ctx)
			if err != nil {
				return goerrors.Wrap(err, 0)
			}
			if err := dump(out, "agentAll", agents); err != nil {
				return err
			}

			metric, err := db.Metric.Create(ctx, agent.UUID, models.Metric{
				Type:  "memory",
				Value: "300",
			})
			if err != nil {
				return goerrors.Wrap(err, 0)
			}
			if err := dump(out, "metric", metric); err != nil {
				return err
			}

			byType, err := db.Metric.FindByTypeAgentUUID(ctx, "memory", agent.UUID)
			if err != nil {
				return goerrors.Wrap(err, 0)
			}
			if err := dump(out, "metricsType", byType); err != nil {
				return err
			}

			metrics, err := db.Metric.FindByAgentUUID(ctx, agent.UUID)
			if err != nil {
				return goerrors.Wrap(err, 0)
			}
			return dump(out, "metrics", metrics)
		},
	}
	cmd.Flags().StringVar(&agentUUID, "uuid", "yyy", "uuid of the example agent")
	return cmd
}

func dump(w io.Writer, title string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerrors.Wrap(err, 0)
	}
	fmt.Fprintf(w, "--%s--\n%s\n", title, b)
	return nil
}
