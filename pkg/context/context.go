package context

import (
	"fmt"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

// Context wraps gin.Context with a prefixed logger shared by all API
// handlers.
type Context struct {
	*gin.Context
	logPrefix string
}

func New(c *gin.Context) *Context {
	return &Context{Context: c}
}

func (c *Context) WithLogPrefix(prefix string) *Context {
	c.logPrefix = prefix
	return c
}

func (c *Context) Infof(format string, args ...interface{}) {
	c.logf(logging.Info, format, args...)
}

func (c *Context) Warnf(format string, args ...interface{}) {
	c.logf(logging.Warning, format, args...)
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.logf(logging.Error, format, args...)
}

func (c *Context) logf(severity logging.Severity, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if c.logPrefix != "" {
		msg = fmt.Sprintf("[%s] %s", c.logPrefix, msg)
	}

	switch severity {
	case logging.Error:
		config.stdoutLogger.Error(msg)
	case logging.Warning:
		config.stdoutLogger.Warn(msg)
	default:
		config.stdoutLogger.Info(msg)
	}

	if config.sdLogger != nil {
		config.sdLogger.Log(logging.Entry{Severity: severity, Payload: msg})
	}
}
