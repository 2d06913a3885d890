package main

import (
	"github.com/sirupsen/logrus"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/bootstrap"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		logrus.WithError(err).Fatal("bootstrap app")
	}

	if err := app.Run(); err != nil {
		logrus.WithError(err).Fatal("run app")
	}
}
