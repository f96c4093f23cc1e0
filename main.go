package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cropd/cropd/internal/cache"
	"github.com/cropd/cropd/internal/config"
	"github.com/cropd/cropd/internal/crop"
	"github.com/cropd/cropd/internal/derive"
	"github.com/cropd/cropd/internal/logging"
	"github.com/cropd/cropd/internal/server"
	"github.com/cropd/cropd/internal/server/routes"
	"github.com/cropd/cropd/internal/source"
	"github.com/cropd/cropd/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["source_dirs"] = len(cfg.Image.SourceDirs)
		fields["max_crops"] = cfg.Image.CropLimit()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序为 配置 → 磁盘存储 → 源图查找 → 裁剪引擎 → 派生管理 → Fiber server，
	// 所有请求共享同一组只读实例。
	manager, err := buildManager(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化派生图管理失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["source_dirs"] = cfg.Image.SourceDirs
	fields["listen_port"] = cfg.Global.ListenPort
	fields["max_crops"] = cfg.Image.CropLimit()
	fields["enable_delete"] = cfg.Image.EnableDelete
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, manager, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

func buildManager(cfg *config.Config, logger *logrus.Logger) (*derive.Manager, error) {
	store, err := cache.NewStore(cfg.Image.SourceDirs...)
	if err != nil {
		return nil, err
	}
	engine := crop.NewEngine(cfg.Image.JPEGQuality, cfg.Image.AutoOrient)
	engine.MaxDimension = cfg.Image.MaxDimension
	return derive.NewManager(derive.Options{
		Resolver: source.NewResolver(cfg.Image.SourceDirs),
		Store:    store,
		Engine:   engine,
		Policy:   crop.Policy{MaxDimension: cfg.Image.MaxDimension},
		MaxCrops: cfg.Image.MaxCrops,
		Logger:   logger,
	})
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("cropd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 CROPD_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("CROPD_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(cfg *config.Config, images server.ImageService, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:       logger,
		Images:       images,
		EnableDelete: cfg.Image.EnableDelete,
		ReadTimeout:  cfg.Global.ReadTimeout.DurationValue(),
		WriteTimeout: cfg.Global.WriteTimeout.DurationValue(),
	})
	if err != nil {
		return err
	}
	routes.RegisterDiagnosticRoutes(app, cfg)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
