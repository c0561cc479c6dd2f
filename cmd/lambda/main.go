package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-resizer/config"
	"github.com/ds124wfegd/image-resizer/internal/appServer"
	"github.com/ds124wfegd/image-resizer/internal/transport"
)

// The function ships without config.yaml; settings come from defaults and
// environment variables.
func main() {
	v, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("cannot load config: %s", err.Error())
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		logrus.Fatalf("cannot parse config: %s", err.Error())
	}

	logger := appServer.NewLogger(cfg.Server.LogLevel)
	handler := transport.NewTransformHandler(appServer.NewTransformService(cfg, logger))

	lambda.Start(handler.HandleAPIGateway)
}
