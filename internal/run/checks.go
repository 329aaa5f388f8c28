package run

import (
	"noter/internal/config"
	"noter/internal/doctor"

	"github.com/sirupsen/logrus"
)

// reportChecks logs the startup capability report. Camera and mic are
// not probed; the pipelines own those and surface their own failures.
func reportChecks(logger *logrus.Logger, cfg *config.Config) {
	doctor.Report(logger, doctor.Run(cfg, false))
}
