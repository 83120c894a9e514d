package catraffic

import "github.com/sirupsen/logrus"

// log 元胞自动机模块的日志记录器
var log = logrus.WithField("module", "catraffic")
