package cli

import (
	"context"
	"fmt"
	"io"

	goerrors "github.com/go-errors/errors"
	"github.com/nodeiot/iotdb/internal/config"
	"github.com/nodeiot/iotdb/internal/database"
	"github.com/nodeiot/iotdb/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app 各子命令共享的运行时状态，在 PersistentPreRunE 中初始化
type app struct {
	configPath string
	cfg        *config.AppConfig
	logger     *zap.Logger
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "iotdb",
		Short:         "Agent and metric storage for the IoT monitoring backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				logger.Flush(a.logger)
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./configs/config.yaml)")

	root.AddCommand(
		newSetupCommand(a),
		newMigrateCommand(a),
		newExampleCommand(a),
		newReportCommand(a),
		newServeCommand(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return goerrors.Wrap(err, 0)
	}
	l, err := logger.New(cfg.Log)
	if err != nil {
		return goerrors.Wrap(fmt.Errorf("init logger: %w", err), 0)
	}
	a.cfg = cfg
	a.logger = l
	return nil
}

// openDB 打开数据库，dbCfg 为在全局配置基础上调整过的副本
func (a *app) openDB(ctx context.Context, dbCfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(ctx, dbCfg, a.logger)
	if err != nil {
		return nil, goerrors.Wrap(err, 0)
	}
	return db, nil
}

// Execute 执行命令，失败时输出错误信息与调用栈，返回进程退出码
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		handleFatalError(stderr, err)
		return 1
	}
	return 0
}

func handleFatalError(w io.Writer, err error) {
	fmt.Fprintln(w, err.Error())
	var stackErr *goerrors.Error
	if goerrors.As(err, &stackErr) {
		fmt.Fprintln(w, string(stackErr.Stack()))
	}
}
