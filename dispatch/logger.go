/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dispatch

import (
	"sync"

	"github.com/tomoncle/repoproxy/utils"
)

var (
	globalLogger   Logger
	globalLoggerMu sync.RWMutex
)

type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

func InitLogger(log Logger) {
	if log == nil {
		return
	}
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = log
	}
}

func GetLogger() Logger {
	globalLoggerMu.RLock()
	l := globalLogger
	globalLoggerMu.RUnlock()
	if l != nil {
		return l
	}

	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = &defaultLogger{logger: utils.NewLogger("DISPATCH")}
	}
	return globalLogger
}

type defaultLogger struct {
	logger *utils.Logger
}

func (l *defaultLogger) Debug(msg string, fields ...interface{}) {
	l.logger.WithFields(utils.FieldsOf(fields...)).Debug(msg)
}

func (l *defaultLogger) Info(msg string, fields ...interface{}) {
	l.logger.WithFields(utils.FieldsOf(fields...)).Info(msg)
}

func (l *defaultLogger) Warn(msg string, fields ...interface{}) {
	l.logger.WithFields(utils.FieldsOf(fields...)).Warn(msg)
}

func (l *defaultLogger) Error(msg string, fields ...interface{}) {
	l.logger.WithFields(utils.FieldsOf(fields...)).Error(msg)
}
