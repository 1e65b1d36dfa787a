package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"career-match-go/internal/api/handler"
	"career-match-go/internal/api/router"
	"career-match-go/internal/config"
	"career-match-go/internal/embedder"
	appCoreLogger "career-match-go/internal/logger"
	"career-match-go/internal/matching"
	"career-match-go/internal/storage"
	"career-match-go/internal/worker"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	initLogger()

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	aliyunEmbedder, err := embedder.NewAliyunEmbedder(cfg.Aliyun.APIKey, cfg.Aliyun.Embedding)
	if err != nil {
		glog.Fatalf("初始化阿里云Embedder失败: %v", err)
	}
	glog.Info("阿里云Embedder初始化成功")

	serviceLogger := log.New(appCoreLogger.Logger, "[MatchService] ", log.LstdFlags|log.Lshortfile)
	matchService, err := matching.NewMatchService(
		aliyunEmbedder,
		storageManager.JobIndex,
		storageManager.ResumeIndex,
		storageManager.MySQL,
		storageManager.MySQL,
		matching.WithLogger(serviceLogger),
		matching.WithEmbeddingModelInfo(cfg.Aliyun.Embedding.Model, cfg.Aliyun.Embedding.Dimensions),
	)
	if err != nil {
		glog.Fatalf("初始化匹配服务失败: %v", err)
	}
	glog.Info("匹配服务初始化成功")

	// 启动索引事件消费者（消息队列可用时）
	var indexConsumer *worker.IndexConsumer
	if storageManager.RabbitMQ != nil {
		indexConsumer, err = worker.NewIndexConsumer(cfg, storageManager, matchService)
		if err != nil {
			glog.Fatalf("创建索引事件消费者失败: %v", err)
		}
		if err := indexConsumer.Start(); err != nil {
			glog.Fatalf("启动索引事件消费者失败: %v", err)
		}
		glog.Info("索引事件消费者已启动")
	} else {
		glog.Warn("消息队列未配置，索引事件将回退为同步处理")
	}

	matchHandler := handler.NewMatchHandler(cfg, matchService, storageManager)
	jobHandler := handler.NewJobHandler(cfg, storageManager, matchService)
	resumeHandler := handler.NewResumeHandler(cfg, storageManager, matchService)
	glog.Info("HTTP处理器初始化成功")

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, matchHandler, jobHandler, resumeHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	if indexConsumer != nil {
		indexConsumer.Stop()
		glog.Info("索引事件消费者已停止")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

func initLogger() {
	logFilePath := "logs/app.log"
	fileWriter, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("无法打开日志文件 %s: %v", logFilePath, err)
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	multiWriter := zerolog.MultiLevelWriter(consoleWriter, fileWriter)

	level := zerolog.InfoLevel
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = "15:04:05"

	logger := zerolog.New(multiWriter).With().Timestamp().Caller().Logger()

	appCoreLogger.Logger = logger
	zlog.Logger = logger

	hertzCompatibleLogger := hertzadapter.From(appCoreLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
	glog.SetLevel(glog.LevelInfo)

	log.Println("Logger initialized with Zerolog, writing to console and file:", logFilePath)
}
