package main

import (
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-resizer/config"
	"github.com/ds124wfegd/image-resizer/internal/appServer"
)

func main() {
	v, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("cannot load config: %s", err.Error())
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		logrus.Fatalf("cannot parse config: %s", err.Error())
	}

	appServer.NewProcessor(cfg)
}
