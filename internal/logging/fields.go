package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供请求路径/源图/处理结果字段，供派生图请求日志复用。
func RequestFields(path, source, outcome string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"path":      path,
		"source":    source,
		"outcome":   outcome,
		"cache_hit": cacheHit,
	}
}
