package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tommyle1310/test-map/task"
	"github.com/tommyle1310/test-map/utils/config"
)

var (
	// 运行的画面：route / calculate-route / picker / nearby
	screen = flag.String("screen", "route", "screen to run (route, calculate-route, picker, nearby)")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 附近查询中心，覆盖配置文件中的nearby.center
	nearbyCenter = flag.String("nearby.center", "", `nearby search center "lat,lon"`)

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "main")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置，未指定时全部使用默认值
	c, err := config.Load(*configPath, *configData)
	if err != nil {
		log.Panicf("%v", err)
	}
	if err := c.OverrideNearbyCenter(*nearbyCenter); err != nil {
		log.Panicf("%v", err)
	}
	log.Infof("%+v", c)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := task.NewContext(c)
	if err := t.Run(ctx, *screen); err != nil {
		log.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
