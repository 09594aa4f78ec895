package main

import (
	"github.com/opsdeck/console/cmd/apps"
	"github.com/opsdeck/console/utils/logger"
)

func main() {
	logger.InitLogger()
	defer logger.Sync()

	if err := apps.RootCmd.Execute(); err != nil {
		panic(err)
	}
}
