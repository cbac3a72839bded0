package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hitoshi/injexpro/internal/config"
)

// サブコマンド名
const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe = "serve"
	// CommandWorker はワーカーモードで起動することを示す。
	CommandWorker = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck = "healthcheck"
)

// NewRootCommand はinjexproのコマンドツリーを生成する。
// サブコマンドを省略した場合はserveとして起動する。
func NewRootCommand(w io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "injexpro",
		Short:         "InjexPro clinical reference API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(w, CommandServe, runServe)
		},
	}
	root.SetOut(w)

	root.AddCommand(newServeCommand(w))
	root.AddCommand(newWorkerCommand(w))
	root.AddCommand(newMigrateCommand(w))
	root.AddCommand(newHealthcheckCommand())

	return root
}

func newServeCommand(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   CommandServe,
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(w, CommandServe, runServe)
		},
	}
}

func newWorkerCommand(w io.Writer) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   CommandWorker,
		Short: "Delete expired sessions periodically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(w, CommandWorker, func(cfg *config.Config) error {
				return runWorker(cfg, metricsAddr)
			})
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to expose /metrics on (disabled when empty)")
	return cmd
}

func newMigrateCommand(w io.Writer) *cobra.Command {
	var rollback int

	cmd := &cobra.Command{
		Use:   CommandMigrate,
		Short: "Apply or roll back database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rollback < 0 {
				return fmt.Errorf("--rollback must not be negative: %d", rollback)
			}
			return withConfig(w, CommandMigrate, func(cfg *config.Config) error {
				return runMigrate(cfg, rollback)
			})
		},
	}
	cmd.Flags().IntVar(&rollback, "rollback", 0, "number of migrations to roll back instead of applying")
	return cmd
}

// newHealthcheckCommand は軽量サブコマンドのため、設定の読み込みを行わない。
func newHealthcheckCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   CommandHealthcheck,
		Short: "Probe the local /health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealthcheck(fmt.Sprintf("http://localhost:%s/health", port))
		},
	}
	cmd.Flags().StringVar(&port, "port", defaultPort(), "port of the API server")
	return cmd
}

// withConfig は初期化を行ってからサブコマンドを実行する。
func withConfig(w io.Writer, name string, run func(cfg *config.Config) error) error {
	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", name),
		slog.String("auth_mode", string(cfg.AuthMode)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	return run(cfg)
}

func defaultPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	return "8080"
}
