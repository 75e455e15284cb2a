package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goerrors "github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/nodeiot/iotdb/internal/database"
	"github.com/nodeiot/iotdb/internal/models"
	"github.com/nodeiot/iotdb/internal/probe"
	"github.com/nodeiot/iotdb/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reporter 把本机作为探针写入数据库
type reporter struct {
	db        *database.DB
	collector *probe.HostCollector
	logger    *zap.Logger
	uuid      string
	name      string
}

// report 上报一次探针信息与指标
func (r *reporter) report(ctx context.Context) error {
	info, err := r.collector.Agent(ctx, r.uuid, r.name)
	if err != nil {
		return err
	}
	samples, err := r.collector.Metrics(ctx)
	if err != nil {
		return err
	}

	agent, err := r.db.Agent.CreateOrUpdate(ctx, info)
	if err != nil {
		return err
	}
	for _, m := range samples {
		if _, err := r.db.Metric.Create(ctx, agent.UUID, m); err != nil {
			return err
		}
	}

	r.logger.Info("主机信息已上报",
		zap.String("uuid", agent.UUID),
		zap.String("hostname", agent.Hostname),
		zap.Int("metrics", len(samples)))
	return nil
}

// disconnect 将探针标记为离线
func (r *reporter) disconnect(ctx context.Context) error {
	agent, err := r.db.Agent.FindByUUID(ctx, r.uuid)
	if err != nil || agent == nil {
		return err
	}
	offline := models.Agent{
		UUID:      agent.UUID,
		Name:      agent.Name,
		Username:  agent.Username,
		Hostname:  agent.Hostname,
		PID:       agent.PID,
		Connected: false,
	}
	_, err = r.db.Agent.CreateOrUpdate(ctx, offline)
	return err
}

func newReportCommand(a *app) *cobra.Command {
	var (
		agentUUID string
		name      string
		schedule  string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Record the local host as an agent together with its memory and cpu metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if agentUUID == "" {
				agentUUID = uuid.NewString()
			}

			db, err := a.openDB(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			r := &reporter{
				db:        db,
				collector: probe.NewHostCollector(),
				logger:    a.logger,
				uuid:      agentUUID,
				name:      name,
			}
			if err := r.report(ctx); err != nil {
				return goerrors.Wrap(err, 0)
			}
			fmt.Fprintln(cmd.OutOrStdout(), agentUUID)

			if schedule == "" {
				return nil
			}

			s := scheduler.NewReportScheduler(r.report, a.logger)
			if err := s.Start(ctx, schedule); err != nil {
				return goerrors.Wrap(err, 0)
			}
			<-ctx.Done()
			s.Stop()

			// ctx 已取消，使用新的 context 完成离线标记
			if err := r.disconnect(context.WithoutCancel(ctx)); err != nil {
				return goerrors.Wrap(err, 0)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&agentUUID, "uuid", "", "agent uuid (a new one is generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "agent name (defaults to the hostname)")
	cmd.Flags().StringVar(&schedule, "cron", "", `keep reporting on this schedule until interrupted, e.g. "@every 30s"`)
	return cmd
}
