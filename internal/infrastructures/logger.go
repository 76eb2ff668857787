package infrastructures

import (
	"github.com/sirupsen/logrus"
)

func init() {
	// All packages log through the logrus standard logger.
	logrus.SetFormatter(&logrus.JSONFormatter{})
}
