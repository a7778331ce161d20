package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/fang"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/char5742/gesture-hid/internal/api"
	"github.com/char5742/gesture-hid/internal/config"
	"github.com/char5742/gesture-hid/internal/features"
	"github.com/char5742/gesture-hid/internal/hid"
)

var version = "dev"

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:   "gesture-hid",
		Short: "ジェスチャーとボタンをBluetoothキーボード入力に変換します",
		Long: `gesture-hid はジェスチャーセンサーと物理ボタンの入力を、
現在のパネルに割り当てられたキー操作としてホストへ送信します。

パネルは設定ファイルの [[panels]] で定義できます。
定義がなければ Desktop, PowerPoint, Zoom, None の組み込みパネルを使います。`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "設定ファイルのパス (指定しない場合はデフォルトパスを使用)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "ログレベル (設定ファイルの値より優先)")

	root.AddCommand(
		runCmd(),
		panelsCmd(),
		descriptorCmd(),
		devicesCmd(),
	)

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

// loadConfig は設定ファイルを読み込む。ファイルがなければデフォルト設定を書き出す
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		dir, err := config.GetDefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("デフォルト設定ディレクトリの取得に失敗しました: %w", err)
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(cfg.LogLevel())
	return logger
}

func runCmd() *cobra.Command {
	var (
		useAPI      bool
		port        int
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "マクロサービスを開始します",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			if cfg.Sensor.Type == config.SensorWebSocket && !useAPI {
				logger.Warn("websocketセンサーはAPIサーバーで受信するため、APIサーバーを有効にします")
				useAPI = true
			}

			comps, err := api.BuildComponents(cfg, logger)
			if err != nil {
				return err
			}
			defer comps.Close()

			service := comps.NewService(cfg)
			if err := service.Start(); err != nil {
				return fmt.Errorf("マクロサービスの起動に失敗しました: %w", err)
			}
			defer func() {
				if service.IsRunning() {
					_ = service.Stop()
				}
			}()

			if useAPI {
				server := api.NewServer(cfg, service, comps, port, logger)
				go func() {
					if err := server.Start(); err != nil {
						logger.WithError(err).Error("APIサーバーの起動に失敗しました")
						cancel()
					}
				}()
				defer func() {
					shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
					defer stop()
					_ = server.Stop(shutdownCtx)
				}()

				if openBrowser {
					if err := browser.OpenURL(server.URL()); err != nil {
						logger.WithError(err).Warn("ブラウザを開けませんでした")
					}
				}
			} else if openBrowser {
				logger.Warn("--open は --api と一緒に指定してください")
			}

			<-ctx.Done()
			logger.Info("シャットダウンします...")
			return nil
		},
	}

	cmd.Flags().BoolVar(&useAPI, "api", false, "APIサーバーを起動します")
	cmd.Flags().IntVar(&port, "port", 8080, "APIサーバーのポート番号")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "起動後に状態ページをブラウザで開きます")
	return cmd
}

func panelsCmd() *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "panels",
		Short: "パネルとマクロの一覧を表示します",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asTOML {
				doc := struct {
					Panels []config.PanelConfig `toml:"panels"`
				}{config.ExportPanels(catalog)}
				return toml.NewEncoder(out).Encode(doc)
			}

			for i, p := range catalog.Panels() {
				fmt.Fprintf(out, "%d: %s\n", i, p.Title)
				for _, m := range p.Macros {
					fmt.Fprintf(out, "    %-14s %-6s %s\n", m.Event, m.Action.Kind(), m.Label)
				}
			}
			for _, d := range catalog.Lint() {
				fmt.Fprintf(out, "警告: パネル %q の %v に複数のマクロがあります %v\n", d.Title, d.Event, d.Labels)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "設定ファイルの [[panels]] 形式で出力します")
	return cmd
}

func descriptorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "descriptor",
		Short: "SDPレコードやUSBガジェットの構成に使うデバイス情報を表示します",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d := cfg.Device
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:          %s\n", d.Name)
			fmt.Fprintf(out, "manufacturer:  %s\n", d.Manufacturer)
			fmt.Fprintf(out, "battery_level: %d\n", d.BatteryLevel)
			fmt.Fprintf(out, "pnp:           source=%#02x vendor=%#04x product=%#04x version=%#04x\n",
				d.VendorSource, d.VendorID, d.ProductID, d.Version)
			fmt.Fprintf(out, "report_map:    %s\n", hex.EncodeToString(hid.ReportMap))
			return nil
		},
	}
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "ボタンやマウスセンサーに使える入力デバイスを表示します",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := features.ScanDevices()
			if err != nil {
				return fmt.Errorf("デバイス一覧の取得に失敗しました: %w", err)
			}
			for _, d := range devices {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-20s %s\n", d.Type, d.Path, d.Name)
			}
			return nil
		},
	}
}
