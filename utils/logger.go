package utils

import (
	"os"

	"go.uber.org/zap"
)

var Logger *zap.SugaredLogger

func InitLogger() {
	var cfg zap.Config
	if os.Getenv("GIN_MODE") == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	Logger = l.Sugar()
}

func init() {
	// Tests and tools get a usable logger without calling InitLogger.
	if Logger == nil {
		Logger = zap.NewNop().Sugar()
	}
}
