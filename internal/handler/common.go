package handler

import (
	"fmt"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
)

// parseInt64Param 解析路径中的整型参数
func parseInt64Param(c *app.RequestContext, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}
